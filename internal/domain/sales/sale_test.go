package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, name string, quantity int64, unitPrice float64) SaleItem {
	t.Helper()
	item, err := NewSaleItem(uuid.Nil, uuid.New(), name, quantity, valueobject.NewMoneyBRLFromFloat(unitPrice))
	require.NoError(t, err)
	return *item
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, PaymentMethodCash.IsValid())
	assert.True(t, PaymentMethodCreditCard.IsValid())
	assert.True(t, PaymentMethodDebitCard.IsValid())
	assert.True(t, PaymentMethodPix.IsValid())
	assert.False(t, PaymentMethod("check").IsValid())
	assert.False(t, PaymentMethod("").IsValid())
}

func TestSaleStatusTransitions(t *testing.T) {
	assert.True(t, SaleStatusCompleted.CanTransitionTo(SaleStatusCanceled))
	assert.False(t, SaleStatusCanceled.CanTransitionTo(SaleStatusCompleted))
	assert.False(t, SaleStatusCanceled.CanTransitionTo(SaleStatusCanceled))
}

func TestNewSaleItem(t *testing.T) {
	tests := []struct {
		name        string
		productID   uuid.UUID
		productName string
		quantity    int64
		unitPrice   float64
		wantErr     string
	}{
		{name: "valid item", productID: uuid.New(), productName: "Coca-Cola 350ml", quantity: 3, unitPrice: 4.50},
		{name: "nil product rejected", productID: uuid.Nil, productName: "Coca-Cola", quantity: 1, unitPrice: 1, wantErr: "INVALID_PRODUCT"},
		{name: "empty name rejected", productID: uuid.New(), productName: "", quantity: 1, unitPrice: 1, wantErr: "INVALID_PRODUCT_NAME"},
		{name: "zero quantity rejected", productID: uuid.New(), productName: "Coca-Cola", quantity: 0, unitPrice: 1, wantErr: "INVALID_QUANTITY"},
		{name: "negative quantity rejected", productID: uuid.New(), productName: "Coca-Cola", quantity: -2, unitPrice: 1, wantErr: "INVALID_QUANTITY"},
		{name: "negative price rejected", productID: uuid.New(), productName: "Coca-Cola", quantity: 1, unitPrice: -0.01, wantErr: "INVALID_PRICE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewSaleItem(uuid.Nil, tt.productID, tt.productName, tt.quantity, valueobject.NewMoneyBRLFromFloat(tt.unitPrice))
			if tt.wantErr != "" {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantErr, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "13.50", item.TotalPrice.StringFixed(2))
		})
	}
}

func TestNewSale(t *testing.T) {
	t.Run("computes totals and links items", func(t *testing.T) {
		items := []SaleItem{
			newTestItem(t, "Coca-Cola 350ml", 2, 4.50),
			newTestItem(t, "Salgadinho", 1, 7.25),
		}

		sale, err := NewSale(PaymentMethodPix, items)
		require.NoError(t, err)
		assert.Equal(t, SaleStatusCompleted, sale.Status)
		assert.Equal(t, "16.25", sale.TotalAmount.StringFixed(2))
		assert.Equal(t, int64(3), sale.TotalQuantity())
		assert.False(t, sale.SoldAt.IsZero())
		for _, item := range sale.Items {
			assert.Equal(t, sale.ID, item.SaleID)
		}
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		_, err := NewSale(PaymentMethodCash, nil)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ORDER", domainErr.Code)
	})

	t.Run("rejects unsupported payment method", func(t *testing.T) {
		_, err := NewSale("check", []SaleItem{newTestItem(t, "Item", 1, 1)})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ORDER", domainErr.Code)
	})
}

func TestSaleSetSaleCode(t *testing.T) {
	sale, err := NewSale(PaymentMethodCash, []SaleItem{newTestItem(t, "Item", 1, 10)})
	require.NoError(t, err)

	require.NoError(t, sale.SetSaleCode("V1756400000000ABC12"))
	assert.Equal(t, "V1756400000000ABC12", sale.SaleCode)

	assert.Error(t, sale.SetSaleCode(""))
}

func TestSaleApplyDiscount(t *testing.T) {
	sale, err := NewSale(PaymentMethodCash, []SaleItem{newTestItem(t, "Item", 2, 10)})
	require.NoError(t, err)

	require.NoError(t, sale.ApplyDiscount(decimal.NewFromFloat(5)))
	assert.Equal(t, "15.00", sale.TotalAmount.StringFixed(2))

	assert.Error(t, sale.ApplyDiscount(decimal.NewFromFloat(-1)))
	assert.Error(t, sale.ApplyDiscount(decimal.NewFromFloat(25)))
}

func TestSaleCancel(t *testing.T) {
	sale, err := NewSale(PaymentMethodDebitCard, []SaleItem{newTestItem(t, "Item", 1, 10)})
	require.NoError(t, err)
	versionBefore := sale.Version

	require.NoError(t, sale.Cancel("customer gave up"))
	assert.True(t, sale.IsCanceled())
	assert.Equal(t, "customer gave up", sale.CancelReason)
	require.NotNil(t, sale.CanceledAt)
	assert.Equal(t, versionBefore+1, sale.Version)

	t.Run("second cancellation is rejected", func(t *testing.T) {
		err := sale.Cancel("again")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_CANCELED", domainErr.Code)
	})
}

func TestSaleCustomerAndOperator(t *testing.T) {
	sale, err := NewSale(PaymentMethodCreditCard, []SaleItem{newTestItem(t, "Item", 1, 10)})
	require.NoError(t, err)

	customerID := uuid.New()
	operatorID := uuid.New()
	sale.SetCustomer(&customerID)
	sale.SetOperator(operatorID)
	sale.SetNotes("delivery at 18h")

	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, customerID, *sale.CustomerID)
	require.NotNil(t, sale.OperatorID)
	assert.Equal(t, operatorID, *sale.OperatorID)
	assert.Equal(t, "delivery at 18h", sale.Notes)
}
