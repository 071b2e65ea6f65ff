package catalog

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name        string
		productName string
		price       decimal.Decimal
		wantErr     string
	}{
		{name: "valid product", productName: "Coca-Cola 350ml", price: decimal.NewFromFloat(4.50)},
		{name: "free product allowed", productName: "Sample", price: decimal.Zero},
		{name: "empty name rejected", productName: "", price: decimal.NewFromFloat(1), wantErr: "INVALID_NAME"},
		{name: "oversize name rejected", productName: strings.Repeat("x", 201), price: decimal.NewFromFloat(1), wantErr: "INVALID_NAME"},
		{name: "negative price rejected", productName: "Coca-Cola", price: decimal.NewFromFloat(-1), wantErr: "INVALID_PRICE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.productName, tt.price)
			if tt.wantErr != "" {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantErr, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.productName, p.Name)
			assert.True(t, p.IsActive)
			assert.True(t, p.HasStockControl)
			assert.False(t, p.HasCategory())
		})
	}
}

func TestProductUpdate(t *testing.T) {
	p, err := NewProduct("Arroz 5kg", decimal.NewFromFloat(25.90))
	require.NoError(t, err)
	initialVersion := p.Version

	require.NoError(t, p.Update("Arroz Tipo 1 5kg", "Pacote de arroz branco"))
	assert.Equal(t, "Arroz Tipo 1 5kg", p.Name)
	assert.Equal(t, initialVersion+1, p.Version)

	assert.Error(t, p.Update("", "desc"))
}

func TestProductSetPrices(t *testing.T) {
	p, err := NewProduct("Feijao 1kg", decimal.NewFromFloat(8.99))
	require.NoError(t, err)

	require.NoError(t, p.SetPrices(decimal.NewFromFloat(9.49), decimal.NewFromFloat(6.00)))
	assert.Equal(t, "9.49", p.Price.StringFixed(2))
	assert.Equal(t, "6.00", p.CostPrice.StringFixed(2))

	assert.Error(t, p.SetPrices(decimal.NewFromFloat(-1), decimal.Zero))
	assert.Error(t, p.SetPrices(decimal.Zero, decimal.NewFromFloat(-1)))
}

func TestProductSetStockLimits(t *testing.T) {
	p, err := NewProduct("Leite 1L", decimal.NewFromFloat(5.50))
	require.NoError(t, err)

	require.NoError(t, p.SetStockLimits(10, 100))
	assert.Equal(t, int64(10), p.MinStock)
	assert.Equal(t, int64(100), p.MaxStock)

	// Max of zero means no ceiling.
	require.NoError(t, p.SetStockLimits(10, 0))

	assert.Error(t, p.SetStockLimits(-1, 10))
	assert.Error(t, p.SetStockLimits(20, 10))
}

func TestProductActivation(t *testing.T) {
	p, err := NewProduct("Cerveja 600ml", decimal.NewFromFloat(12))
	require.NoError(t, err)

	assert.Error(t, p.Activate())

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)
	assert.Error(t, p.Deactivate())

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive)
}

func TestProductStockControlToggle(t *testing.T) {
	p, err := NewProduct("Servico de entrega", decimal.NewFromFloat(15))
	require.NoError(t, err)

	p.DisableStockControl()
	assert.False(t, p.HasStockControl)

	p.EnableStockControl()
	assert.True(t, p.HasStockControl)
}

func TestProductCategoryAndBarcode(t *testing.T) {
	p, err := NewProduct("Biscoito", decimal.NewFromFloat(3.25))
	require.NoError(t, err)

	categoryID := uuid.New()
	p.SetCategory(&categoryID)
	assert.True(t, p.HasCategory())

	require.NoError(t, p.SetBarcode("7891234567895"))
	assert.Equal(t, "7891234567895", p.Barcode)
	assert.Error(t, p.SetBarcode(strings.Repeat("9", 51)))
}

func TestProductProfitMargin(t *testing.T) {
	p, err := NewProduct("Cafe 500g", decimal.NewFromFloat(15))
	require.NoError(t, err)
	assert.True(t, p.GetProfitMargin().IsZero())

	require.NoError(t, p.SetPrices(decimal.NewFromFloat(15), decimal.NewFromFloat(10)))
	assert.Equal(t, "50.00", p.GetProfitMargin().StringFixed(2))
}

func TestProductPriceMoney(t *testing.T) {
	p, err := NewProduct("Acucar 1kg", decimal.NewFromFloat(4.79))
	require.NoError(t, err)
	assert.Equal(t, "4.79 BRL", p.GetPriceMoney().String())
}
