package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// MovementInput describes a single stock change to apply.
// For INBOUND and OUTBOUND the quantity is the delta; for ADJUSTMENT
// it is the absolute counted quantity the stock is set to.
type MovementInput struct {
	ProductID  uuid.UUID
	Kind       MovementKind
	Quantity   int64
	Reason     string
	Reference  string
	OperatorID *uuid.UUID
}

// LedgerService is the single legal path for mutating product stock.
// Every change goes through Apply, which updates the stock record and
// appends a matching movement in the same unit of work, so the ledger
// always replays to the current quantity.
type LedgerService struct{}

// NewLedgerService creates a new ledger service
func NewLedgerService() *LedgerService {
	return &LedgerService{}
}

// Apply validates the input, mutates the stock record and appends the
// movement. Callers are expected to run it inside a transaction scope
// so the stock update and the ledger entry commit together.
func (s *LedgerService) Apply(
	ctx context.Context,
	stocks ProductStockRepository,
	movements StockMovementRepository,
	input MovementInput,
) (*StockMovement, error) {
	if input.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !input.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Invalid movement kind")
	}
	if input.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot be empty")
	}

	stock, err := stocks.GetOrCreate(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	before := stock.Quantity
	switch input.Kind {
	case MovementKindInbound:
		err = stock.Increase(input.Quantity)
	case MovementKindOutbound:
		err = stock.Decrease(input.Quantity)
	case MovementKindAdjustment:
		err = stock.AdjustTo(input.Quantity)
	}
	if err != nil {
		return nil, err
	}

	movement, err := NewStockMovement(input.ProductID, input.Kind, input.Quantity, before, stock.Quantity, input.Reason)
	if err != nil {
		return nil, err
	}
	if input.Reference != "" {
		movement.WithReference(input.Reference)
	}
	if input.OperatorID != nil {
		movement.WithOperatorID(*input.OperatorID)
	}

	if err := stocks.SaveWithLock(ctx, stock); err != nil {
		return nil, err
	}
	if err := movements.Create(ctx, movement); err != nil {
		return nil, err
	}

	return movement, nil
}

// CurrentStock returns the on-hand quantity for a product.
// Products without a stock record report zero.
func (s *LedgerService) CurrentStock(ctx context.Context, stocks ProductStockRepository, productID uuid.UUID) (int64, error) {
	stock, err := stocks.FindByProduct(ctx, productID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return 0, nil
		}
		return 0, err
	}
	return stock.Quantity, nil
}
