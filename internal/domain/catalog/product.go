package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the catalog.
// It is the aggregate root for product-related operations.
type Product struct {
	shared.BaseAggregateRoot
	Name            string          `gorm:"type:varchar(200);not null"`
	Description     string          `gorm:"type:text"`
	Barcode         string          `gorm:"type:varchar(50);uniqueIndex:idx_products_barcode,where:barcode <> ''"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"` // Selling price
	CostPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	MinStock        int64           `gorm:"not null;default:0"` // Low-stock alert threshold
	MaxStock        int64           `gorm:"not null;default:0"` // Zero means no ceiling
	HasStockControl bool            `gorm:"not null;default:true"`
	IsActive        bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		CostPrice:         decimal.Zero,
		HasStockControl:   true,
		IsActive:          true,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	if len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}

	p.Barcode = barcode
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetCategory sets the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetPrices sets the selling and cost prices
func (p *Product) SetPrices(price, costPrice decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}

	p.Price = price
	p.CostPrice = costPrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetStockLimits sets the low-stock threshold and the stock ceiling
func (p *Product) SetStockLimits(minStock, maxStock int64) error {
	if minStock < 0 || maxStock < 0 {
		return shared.NewDomainError("INVALID_STOCK_LIMIT", "Stock limits cannot be negative")
	}
	if maxStock > 0 && minStock > maxStock {
		return shared.NewDomainError("INVALID_STOCK_LIMIT", "Minimum stock cannot exceed maximum stock")
	}

	p.MinStock = minStock
	p.MaxStock = maxStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// DisableStockControl turns off stock tracking for the product.
// Sales of such products skip availability checks and leave no movements.
func (p *Product) DisableStockControl() {
	p.HasStockControl = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// EnableStockControl turns stock tracking back on
func (p *Product) EnableStockControl() {
	p.HasStockControl = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate makes the product sellable again
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale without deleting its history
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasCategory returns true if the product has a category assigned
func (p *Product) HasCategory() bool {
	return p.CategoryID != nil
}

// GetPriceMoney returns the selling price as a Money value object
func (p *Product) GetPriceMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(p.Price)
}

// GetCostPriceMoney returns the cost price as a Money value object
func (p *Product) GetCostPriceMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(p.CostPrice)
}

// GetProfitMargin returns the profit margin percentage.
// Returns 0 if the cost price is zero.
func (p *Product) GetProfitMargin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	profit := p.Price.Sub(p.CostPrice)
	return profit.Div(p.CostPrice).Mul(decimal.NewFromInt(100))
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
