package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementKindIsValid(t *testing.T) {
	assert.True(t, MovementKindInbound.IsValid())
	assert.True(t, MovementKindOutbound.IsValid())
	assert.True(t, MovementKindAdjustment.IsValid())
	assert.False(t, MovementKind("TRANSFER").IsValid())
	assert.False(t, MovementKind("").IsValid())
}

func TestNewStockMovement(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name        string
		productID   uuid.UUID
		kind        MovementKind
		quantity    int64
		stockBefore int64
		stockAfter  int64
		reason      string
		wantErr     string
	}{
		{
			name:      "valid outbound movement",
			productID: productID, kind: MovementKindOutbound,
			quantity: 2, stockBefore: 10, stockAfter: 8, reason: ReasonSale,
		},
		{
			name:      "valid inbound movement",
			productID: productID, kind: MovementKindInbound,
			quantity: 2, stockBefore: 8, stockAfter: 10, reason: ReasonSaleCancellation,
		},
		{
			name:      "adjustment to zero allowed",
			productID: productID, kind: MovementKindAdjustment,
			quantity: 0, stockBefore: 8, stockAfter: 0, reason: ReasonManualAdjustment,
		},
		{
			name:      "nil product rejected",
			productID: uuid.Nil, kind: MovementKindOutbound,
			quantity: 2, stockBefore: 10, stockAfter: 8, reason: ReasonSale,
			wantErr: "INVALID_PRODUCT",
		},
		{
			name:      "invalid kind rejected",
			productID: productID, kind: "TRANSFER",
			quantity: 2, stockBefore: 10, stockAfter: 8, reason: ReasonSale,
			wantErr: "INVALID_MOVEMENT_KIND",
		},
		{
			name:      "zero quantity rejected for non-adjustment",
			productID: productID, kind: MovementKindOutbound,
			quantity: 0, stockBefore: 10, stockAfter: 10, reason: ReasonSale,
			wantErr: "INVALID_QUANTITY",
		},
		{
			name:      "negative balance rejected",
			productID: productID, kind: MovementKindOutbound,
			quantity: 2, stockBefore: 1, stockAfter: -1, reason: ReasonSale,
			wantErr: "INVALID_STOCK_BALANCE",
		},
		{
			name:      "empty reason rejected",
			productID: productID, kind: MovementKindOutbound,
			quantity: 2, stockBefore: 10, stockAfter: 8, reason: "",
			wantErr: "INVALID_REASON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewStockMovement(tt.productID, tt.kind, tt.quantity, tt.stockBefore, tt.stockAfter, tt.reason)
			if tt.wantErr != "" {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantErr, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, m.Kind)
			assert.Equal(t, tt.quantity, m.Quantity)
			assert.False(t, m.OccurredAt.IsZero())
		})
	}
}

func TestStockMovementSignedQuantity(t *testing.T) {
	productID := uuid.New()

	out, err := NewStockMovement(productID, MovementKindOutbound, 3, 10, 7, ReasonSale)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), out.SignedQuantity())

	in, err := NewStockMovement(productID, MovementKindInbound, 3, 7, 10, ReasonSaleCancellation)
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.SignedQuantity())

	adj, err := NewStockMovement(productID, MovementKindAdjustment, 4, 10, 4, ReasonManualAdjustment)
	require.NoError(t, err)
	assert.Equal(t, int64(-6), adj.SignedQuantity())
	assert.Equal(t, int64(-6), adj.StockChange())
}

func TestStockMovementBuilders(t *testing.T) {
	m, err := NewStockMovement(uuid.New(), MovementKindOutbound, 1, 5, 4, ReasonSale)
	require.NoError(t, err)

	operator := uuid.New()
	m.WithReference("V123ABC").WithOperatorID(operator)

	assert.Equal(t, "V123ABC", m.Reference)
	require.NotNil(t, m.OperatorID)
	assert.Equal(t, operator, *m.OperatorID)
}
