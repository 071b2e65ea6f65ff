package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// CreateSaleItemInput is one requested line of a new sale. The unit
// price is supplied by the caller and frozen on the line item; the
// catalog price is not consulted, so discounts negotiated at the
// counter survive later price changes.
type CreateSaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateSaleInput is the request to register a sale
type CreateSaleInput struct {
	Items          []CreateSaleItemInput
	PaymentMethod  string
	CustomerID     *uuid.UUID
	Discount       *decimal.Decimal
	Notes          string
	OperatorID     *uuid.UUID
	IdempotencyKey string
}

// CancelSaleInput is the request to cancel a sale
type CancelSaleInput struct {
	SaleID     uuid.UUID
	Reason     string
	OperatorID *uuid.UUID
}

// SaleItemResponse is one line of a sale as returned to callers
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// SaleResponse is a sale as returned to callers
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SaleCode      string             `json:"sale_code"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Discount      decimal.Decimal    `json:"discount"`
	Notes         string             `json:"notes,omitempty"`
	SoldAt        time.Time          `json:"sold_at"`
	CanceledAt    *time.Time         `json:"canceled_at,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaleListFilter is the filter for listing sales
type SaleListFilter struct {
	Page          int
	PageSize      int
	OrderBy       string
	OrderDir      string
	Status        *string
	PaymentMethod *string
	CustomerID    *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
}

// ToSaleResponse converts a sale aggregate to its response form
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(sale.Items))
	for i := range sale.Items {
		item := &sale.Items[i]
		items = append(items, SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	return SaleResponse{
		ID:            sale.ID,
		SaleCode:      sale.SaleCode,
		CustomerID:    sale.CustomerID,
		Items:         items,
		PaymentMethod: sale.PaymentMethod.String(),
		Status:        sale.Status.String(),
		TotalAmount:   sale.TotalAmount,
		Discount:      sale.Discount,
		Notes:         sale.Notes,
		SoldAt:        sale.SoldAt,
		CanceledAt:    sale.CanceledAt,
		CancelReason:  sale.CancelReason,
		CreatedAt:     sale.CreatedAt,
	}
}
