package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	// SaleStatusCompleted is the state of every successfully registered sale.
	// Point-of-sale checkouts settle immediately, there is no draft phase.
	SaleStatusCompleted SaleStatus = "completed"
	// SaleStatusCanceled is the terminal state after a cancellation
	SaleStatusCanceled SaleStatus = "canceled"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	return s == SaleStatusCompleted && target == SaleStatusCanceled
}

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodPix        PaymentMethod = "pix"
)

// IsValid checks if the payment method is supported
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPix:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (p PaymentMethod) String() string {
	return string(p)
}

// SaleItem represents a line item in a sale.
// Product name and price are snapshotted at sale time so later catalog
// edits never rewrite past receipts.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_items_sale"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_items_product"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewSaleItem creates a new sale line item
func NewSaleItem(saleID, productID uuid.UUID, productName string, quantity int64, unitPrice valueobject.Money) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		TotalPrice:  unitPrice.Amount().Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetUnitPriceMoney returns the unit price as Money value object
func (i *SaleItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(i.UnitPrice)
}

// GetTotalPriceMoney returns the line total as Money value object
func (i *SaleItem) GetTotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(i.TotalPrice)
}

// Sale represents a completed point-of-sale transaction.
// It is the aggregate root owning its line items.
type Sale struct {
	shared.BaseAggregateRoot
	SaleCode      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_code"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;references:ID"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;default:'completed';index:idx_sales_status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Notes         string          `gorm:"type:text"`
	OperatorID    *uuid.UUID      `gorm:"type:uuid"`
	SoldAt        time.Time       `gorm:"not null;index:idx_sales_sold_at"`
	CanceledAt    *time.Time
	CancelReason  string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a completed sale from its line items.
// The sale code is assigned by the repository on first save.
func NewSale(paymentMethod PaymentMethod, items []SaleItem) (*Sale, error) {
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER", "Unsupported payment method")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Sale must have at least one item")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Items:             items,
		PaymentMethod:     paymentMethod,
		Status:            SaleStatusCompleted,
		Discount:          decimal.Zero,
		SoldAt:            time.Now(),
	}
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	sale.recalculateTotal()

	return sale, nil
}

// SetSaleCode assigns the unique receipt code. Set once by the repository.
func (s *Sale) SetSaleCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_SALE_CODE", "Sale code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_SALE_CODE", "Sale code cannot exceed 50 characters")
	}
	s.SaleCode = code
	return nil
}

// SetCustomer links the sale to a customer
func (s *Sale) SetCustomer(customerID *uuid.UUID) {
	s.CustomerID = customerID
	s.UpdatedAt = time.Now()
}

// SetOperator records the user who registered the sale
func (s *Sale) SetOperator(operatorID uuid.UUID) {
	s.OperatorID = &operatorID
	s.UpdatedAt = time.Now()
}

// SetNotes attaches free-form notes to the sale
func (s *Sale) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}

// ApplyDiscount applies an absolute discount to the sale total
func (s *Sale) ApplyDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(s.itemsTotal()) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the items total")
	}

	s.Discount = discount
	s.recalculateTotal()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Cancel marks the sale as canceled. Canceling twice is rejected so the
// compensating stock movements are only ever produced once.
func (s *Sale) Cancel(reason string) error {
	if s.Status == SaleStatusCanceled {
		return shared.NewDomainError("ALREADY_CANCELED", "Sale has already been canceled")
	}
	if !s.Status.CanTransitionTo(SaleStatusCanceled) {
		return shared.NewDomainError("INVALID_STATE", "Sale cannot be canceled in its current state")
	}

	now := time.Now()
	s.Status = SaleStatusCanceled
	s.CanceledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()

	return nil
}

// IsCanceled returns true if the sale has been canceled
func (s *Sale) IsCanceled() bool {
	return s.Status == SaleStatusCanceled
}

// GetTotalAmountMoney returns the sale total as Money value object
func (s *Sale) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(s.TotalAmount)
}

// TotalQuantity returns the number of units across all line items
func (s *Sale) TotalQuantity() int64 {
	var total int64
	for i := range s.Items {
		total += s.Items[i].Quantity
	}
	return total
}

func (s *Sale) itemsTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Items {
		total = total.Add(s.Items[i].TotalPrice)
	}
	return total
}

func (s *Sale) recalculateTotal() {
	s.TotalAmount = s.itemsTotal().Sub(s.Discount)
}
