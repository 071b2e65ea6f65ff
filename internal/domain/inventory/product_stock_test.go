package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductStock(t *testing.T) {
	tests := []struct {
		name      string
		productID uuid.UUID
		quantity  int64
		wantErr   string
	}{
		{name: "valid initial stock", productID: uuid.New(), quantity: 10},
		{name: "zero initial stock", productID: uuid.New(), quantity: 0},
		{name: "nil product rejected", productID: uuid.Nil, quantity: 10, wantErr: "INVALID_PRODUCT"},
		{name: "negative quantity rejected", productID: uuid.New(), quantity: -1, wantErr: "INVALID_QUANTITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, err := NewProductStock(tt.productID, tt.quantity)
			if tt.wantErr != "" {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantErr, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.productID, stock.ProductID)
			assert.Equal(t, tt.quantity, stock.Quantity)
			assert.Equal(t, 1, stock.Version)
		})
	}
}

func TestProductStockIncrease(t *testing.T) {
	stock, err := NewProductStock(uuid.New(), 5)
	require.NoError(t, err)

	require.NoError(t, stock.Increase(3))
	assert.Equal(t, int64(8), stock.Quantity)

	assert.Error(t, stock.Increase(0))
	assert.Error(t, stock.Increase(-2))
	assert.Equal(t, int64(8), stock.Quantity)
}

func TestProductStockDecrease(t *testing.T) {
	stock, err := NewProductStock(uuid.New(), 5)
	require.NoError(t, err)

	require.NoError(t, stock.Decrease(2))
	assert.Equal(t, int64(3), stock.Quantity)

	t.Run("cannot go negative", func(t *testing.T) {
		err := stock.Decrease(4)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Equal(t, int64(3), stock.Quantity)
	})

	t.Run("can drain to exactly zero", func(t *testing.T) {
		require.NoError(t, stock.Decrease(3))
		assert.Equal(t, int64(0), stock.Quantity)
	})

	assert.Error(t, stock.Decrease(0))
}

func TestProductStockAdjustTo(t *testing.T) {
	stock, err := NewProductStock(uuid.New(), 5)
	require.NoError(t, err)

	require.NoError(t, stock.AdjustTo(12))
	assert.Equal(t, int64(12), stock.Quantity)

	require.NoError(t, stock.AdjustTo(0))
	assert.Equal(t, int64(0), stock.Quantity)

	assert.Error(t, stock.AdjustTo(-1))
}

func TestProductStockIsAvailable(t *testing.T) {
	stock, err := NewProductStock(uuid.New(), 5)
	require.NoError(t, err)

	assert.True(t, stock.IsAvailable(5))
	assert.True(t, stock.IsAvailable(1))
	assert.False(t, stock.IsAvailable(6))
	assert.False(t, stock.IsAvailable(0))
	assert.False(t, stock.IsAvailable(-1))
}
