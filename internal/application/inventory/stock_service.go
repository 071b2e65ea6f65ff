package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService exposes stock queries and the manual stock operations
// (counts and receipts). Every mutation goes through the ledger inside
// a transaction scope, the same path sales use.
type StockService struct {
	stockRepo    inventory.ProductStockRepository
	movementRepo inventory.StockMovementRepository
	productRepo  catalog.ProductRepository
	ledger       *inventory.LedgerService
	scope        TransactionScope
	logger       *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo inventory.ProductStockRepository,
	movementRepo inventory.StockMovementRepository,
	productRepo catalog.ProductRepository,
	ledger *inventory.LedgerService,
	scope TransactionScope,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		productRepo:  productRepo,
		ledger:       ledger,
		scope:        scope,
		logger:       logger,
	}
}

// CurrentStock returns the quantity on hand for a product. Products
// without a stock record read as zero.
func (s *StockService) CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error) {
	if productID == uuid.Nil {
		return 0, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	quantity, err := s.ledger.CurrentStock(ctx, s.stockRepo, productID)
	if err != nil {
		return 0, wrapStorageError(err)
	}
	return quantity, nil
}

// Adjust corrects a product's stock to the counted quantity and records
// an adjustment movement carrying both the old and new values.
func (s *StockService) Adjust(ctx context.Context, input AdjustStockInput) (*MovementResponse, error) {
	if input.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if input.CountedQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Counted quantity cannot be negative")
	}
	if _, err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movement, err = s.ledger.Apply(ctx, repos.StockRepo(), repos.MovementRepo(), inventory.MovementInput{
			ProductID:  input.ProductID,
			Kind:       inventory.MovementKindAdjustment,
			Quantity:   input.CountedQuantity,
			Reason:     inventory.ReasonManualAdjustment,
			Reference:  input.Notes,
			OperatorID: input.OperatorID,
		})
		return err
	})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	s.logger.Info("Stock adjusted",
		zap.String("product_id", input.ProductID.String()),
		zap.Int64("stock_before", movement.StockBefore),
		zap.Int64("stock_after", movement.StockAfter))

	response := ToMovementResponse(movement)
	return &response, nil
}

// Receive books an inbound stock receipt for a product
func (s *StockService) Receive(ctx context.Context, input ReceiveStockInput) (*MovementResponse, error) {
	if input.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if input.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt quantity must be positive")
	}
	if _, err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movement, err = s.ledger.Apply(ctx, repos.StockRepo(), repos.MovementRepo(), inventory.MovementInput{
			ProductID:  input.ProductID,
			Kind:       inventory.MovementKindInbound,
			Quantity:   input.Quantity,
			Reason:     inventory.ReasonRestock,
			Reference:  input.Reference,
			OperatorID: input.OperatorID,
		})
		return err
	})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	s.logger.Info("Stock received",
		zap.String("product_id", input.ProductID.String()),
		zap.Int64("quantity", input.Quantity),
		zap.Int64("stock_after", movement.StockAfter))

	response := ToMovementResponse(movement)
	return &response, nil
}

// ListMovements returns the ledger history matching the filter, newest
// first, with the total count for pagination.
func (s *StockService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := inventory.MovementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "occurred_at",
			OrderDir: "desc",
		},
		ProductID: filter.ProductID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
	if filter.Kind != nil {
		kind := inventory.MovementKind(*filter.Kind)
		if !kind.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Unknown movement kind %q", *filter.Kind))
		}
		domainFilter.Kind = &kind
	}
	if filter.Reason != nil {
		domainFilter.Reason = *filter.Reason
	}
	if filter.Reference != nil {
		domainFilter.Reference = *filter.Reference
	}

	movements, err := s.movementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}
	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}

// ListLowStock returns active stock-controlled products at or below
// their configured minimum.
func (s *StockService) ListLowStock(ctx context.Context) ([]LowStockItem, error) {
	products, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Filter:     shared.Filter{Page: 1, PageSize: 1000, OrderBy: "name", OrderDir: "asc"},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	items := make([]LowStockItem, 0)
	for i := range products {
		product := &products[i]
		if !product.HasStockControl || product.MinStock <= 0 {
			continue
		}
		quantity, err := s.ledger.CurrentStock(ctx, s.stockRepo, product.ID)
		if err != nil {
			return nil, wrapStorageError(err)
		}
		if quantity <= product.MinStock {
			items = append(items, LowStockItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    quantity,
				MinStock:    product.MinStock,
			})
		}
	}
	return items, nil
}

// Report summarizes the stock position: distinct products with stock
// records, total units on hand and their value at current sale price.
func (s *StockService) Report(ctx context.Context) (*StockReport, error) {
	stocks, err := s.stockRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10000})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	report := StockReport{
		TotalValue:  decimal.Zero,
		GeneratedAt: time.Now().UTC(),
	}
	for i := range stocks {
		stock := &stocks[i]
		report.TotalProducts++
		report.TotalUnits += stock.Quantity
		product, err := s.productRepo.FindByID(ctx, stock.ProductID)
		if err != nil {
			// Orphaned stock records still count units, just not value.
			continue
		}
		report.TotalValue = report.TotalValue.Add(product.Price.Mul(decimal.NewFromInt(stock.Quantity)))
	}

	lowStock, err := s.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	report.LowStockCount = len(lowStock)
	return &report, nil
}

func (s *StockService) requireProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND",
				fmt.Sprintf("Product %s not found", productID))
		}
		return nil, wrapStorageError(err)
	}
	return product, nil
}

// wrapStorageError keeps domain errors intact and converts anything
// else to PERSISTENCE_FAILURE.
func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewDomainError(shared.ErrPersistenceFailure.Code, "Storage operation failed: "+err.Error())
}
