package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// MovementKind represents the direction of a stock movement
type MovementKind string

const (
	// MovementKindInbound represents stock coming into inventory (restock, sale cancellation)
	MovementKindInbound MovementKind = "INBOUND"
	// MovementKindOutbound represents stock leaving inventory (sale)
	MovementKindOutbound MovementKind = "OUTBOUND"
	// MovementKindAdjustment represents an absolute correction to the counted stock
	MovementKindAdjustment MovementKind = "ADJUSTMENT"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindInbound, MovementKindOutbound, MovementKindAdjustment:
		return true
	}
	return false
}

// Well-known movement reasons
const (
	ReasonSale             = "sale"
	ReasonSaleCancellation = "sale-cancellation"
	ReasonManualAdjustment = "manual-adjustment"
	ReasonInitialStock     = "initial-stock"
	ReasonRestock          = "restock"
)

// StockMovement is an immutable ledger entry recording a single stock change.
// Once created, movements are never modified - corrections are made with new movements.
type StockMovement struct {
	shared.BaseEntity
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movements_product"`
	Kind        MovementKind `gorm:"type:varchar(20);not null;index:idx_stock_movements_kind"`
	Quantity    int64        `gorm:"not null"` // Always positive, direction determined by Kind
	StockBefore int64        `gorm:"not null"`
	StockAfter  int64        `gorm:"not null"`
	Reason      string       `gorm:"type:varchar(100);not null"`
	Reference   string       `gorm:"type:varchar(100);index:idx_stock_movements_reference"` // Sale code or other source document
	OperatorID  *uuid.UUID   `gorm:"type:uuid"`
	OccurredAt  time.Time    `gorm:"not null;index:idx_stock_movements_occurred"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement record
func NewStockMovement(
	productID uuid.UUID,
	kind MovementKind,
	quantity int64,
	stockBefore int64,
	stockAfter int64,
	reason string,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Invalid movement kind")
	}
	// Adjustments carry the absolute counted quantity, which may be zero.
	if quantity < 0 || (quantity == 0 && kind != MovementKindAdjustment) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if stockBefore < 0 || stockAfter < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK_BALANCE", "Stock balances cannot be negative")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot be empty")
	}

	return &StockMovement{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Kind:        kind,
		Quantity:    quantity,
		StockBefore: stockBefore,
		StockAfter:  stockAfter,
		Reason:      reason,
		OccurredAt:  time.Now(),
	}, nil
}

// WithReference sets the source document reference (e.g. sale code)
func (m *StockMovement) WithReference(reference string) *StockMovement {
	m.Reference = reference
	return m
}

// WithOperatorID sets the user who triggered the movement
func (m *StockMovement) WithOperatorID(operatorID uuid.UUID) *StockMovement {
	m.OperatorID = &operatorID
	return m
}

// SignedQuantity returns the quantity with sign based on movement kind.
// Positive for inbound, negative for outbound; adjustments report the
// net change between the recorded balances.
func (m *StockMovement) SignedQuantity() int64 {
	switch m.Kind {
	case MovementKindOutbound:
		return -m.Quantity
	case MovementKindAdjustment:
		return m.StockAfter - m.StockBefore
	default:
		return m.Quantity
	}
}

// StockChange returns the net change between the recorded balances
func (m *StockMovement) StockChange() int64 {
	return m.StockAfter - m.StockBefore
}
