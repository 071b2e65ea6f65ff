package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// ProductStock is the current on-hand quantity for a single product.
// It is only ever mutated through the ledger service so every change
// leaves a matching StockMovement behind.
type ProductStock struct {
	shared.BaseAggregateRoot
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_stocks_product"`
	Quantity  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductStock) TableName() string {
	return "product_stocks"
}

// NewProductStock creates a stock record for a product with an initial quantity
func NewProductStock(productID uuid.UUID, quantity int64) (*ProductStock, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}
	return &ProductStock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          quantity,
	}, nil
}

// IsAvailable returns true if at least the requested quantity is on hand
func (s *ProductStock) IsAvailable(quantity int64) bool {
	return quantity > 0 && s.Quantity >= quantity
}

// Increase adds quantity to the on-hand stock
func (s *ProductStock) Increase(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	s.Quantity += quantity
	return nil
}

// Decrease removes quantity from the on-hand stock.
// Fails if the result would be negative.
func (s *ProductStock) Decrease(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Quantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock: have %d, need %d", s.Quantity, quantity))
	}
	s.Quantity -= quantity
	return nil
}

// AdjustTo sets the on-hand stock to an absolute counted quantity
func (s *ProductStock) AdjustTo(quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot be negative")
	}
	s.Quantity = quantity
	return nil
}
