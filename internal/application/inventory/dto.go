package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AdjustStockInput carries a manual stock count correction. The counted
// quantity is the absolute number on the shelf, not a delta.
type AdjustStockInput struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	CountedQuantity int64     `json:"counted_quantity"`
	Notes           string    `json:"notes"`
	OperatorID      *uuid.UUID
}

// ReceiveStockInput carries an inbound stock receipt (restock)
type ReceiveStockInput struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	Quantity   int64     `json:"quantity" binding:"required"`
	Reference  string    `json:"reference"`
	OperatorID *uuid.UUID
}

// MovementListFilter filters the movement history
type MovementListFilter struct {
	Page      int
	PageSize  int
	ProductID *uuid.UUID
	Kind      *string
	Reason    *string
	Reference *string
	StartDate *time.Time
	EndDate   *time.Time
}

// StockResponse is the stock record returned to clients
type StockResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MovementResponse is a single ledger entry returned to clients
type MovementResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	Kind        string     `json:"kind"`
	Quantity    int64      `json:"quantity"`
	StockBefore int64      `json:"stock_before"`
	StockAfter  int64      `json:"stock_after"`
	Reason      string     `json:"reason"`
	Reference   string     `json:"reference,omitempty"`
	OperatorID  *uuid.UUID `json:"operator_id,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// LowStockItem is a product at or below its configured minimum
type LowStockItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	MinStock    int64     `json:"min_stock"`
}

// StockReport aggregates the current stock position
type StockReport struct {
	TotalProducts int64           `json:"total_products"`
	TotalUnits    int64           `json:"total_units"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// ToStockResponse converts a stock record to its response form
func ToStockResponse(stock *inventory.ProductStock) StockResponse {
	return StockResponse{
		ProductID: stock.ProductID,
		Quantity:  stock.Quantity,
		UpdatedAt: stock.UpdatedAt,
	}
}

// ToMovementResponse converts a ledger entry to its response form
func ToMovementResponse(movement *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:          movement.ID,
		ProductID:   movement.ProductID,
		Kind:        movement.Kind.String(),
		Quantity:    movement.Quantity,
		StockBefore: movement.StockBefore,
		StockAfter:  movement.StockAfter,
		Reason:      movement.Reason,
		Reference:   movement.Reference,
		OperatorID:  movement.OperatorID,
		OccurredAt:  movement.OccurredAt,
	}
}
