package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService registers and cancels sales. It is the only component
// that writes sales, and every stock change it makes goes through the
// inventory ledger inside a transaction scope, so a sale and its
// movements are always persisted together or not at all.
type OrderService struct {
	saleRepo    sales.SaleRepository
	productRepo catalog.ProductRepository
	stockRepo   inventory.ProductStockRepository
	ledger      *inventory.LedgerService
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	stockRepo inventory.ProductStockRepository,
	ledger *inventory.LedgerService,
	scope TransactionScope,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		ledger:      ledger,
		scope:       scope,
		idemConfig:  shared.IdempotencyConfig{Enabled: false},
		logger:      logger,
	}
}

// SetIdempotencyStore enables duplicate-request protection for creates
// that carry a client idempotency key.
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, config shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = config
}

// Create registers a sale. All lines are validated against the current
// stock before anything is written; then the sale, its items and one
// outbound movement per stock-controlled product commit in a single
// transaction. On any failure nothing is persisted.
func (s *OrderService) Create(ctx context.Context, input CreateSaleInput) (*SaleResponse, error) {
	if err := s.validateCreateInput(input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idempotency != nil && s.idemConfig.Enabled {
		processed, err := s.idempotency.IsProcessed(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn("Idempotency check failed, proceeding without it", zap.Error(err))
		} else if processed {
			s.logger.Info("Duplicate sale request rejected", zap.String("idempotency_key", input.IdempotencyKey))
			return nil, shared.ErrDuplicateRequest
		}
	}

	// Quantities are merged per product so a sale listing the same
	// product twice is checked against the combined amount.
	quantityByProduct := make(map[uuid.UUID]int64)
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, line := range input.Items {
		if _, seen := quantityByProduct[line.ProductID]; !seen {
			productIDs = append(productIDs, line.ProductID)
		}
		quantityByProduct[line.ProductID] += line.Quantity
	}

	products, err := s.loadProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	// Read-only availability pass over every line. A sale with any
	// unsatisfiable line is rejected as a whole before any write.
	for _, productID := range productIDs {
		product := products[productID]
		if !product.HasStockControl {
			continue
		}
		available, err := s.ledger.CurrentStock(ctx, s.stockRepo, productID)
		if err != nil {
			return nil, wrapStorageError(err)
		}
		if available < quantityByProduct[productID] {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for product %q: have %d, need %d",
					product.Name, available, quantityByProduct[productID]))
		}
	}

	items := make([]sales.SaleItem, 0, len(input.Items))
	for _, line := range input.Items {
		product := products[line.ProductID]
		item, err := sales.NewSaleItem(uuid.Nil, product.ID, product.Name, line.Quantity, valueobject.NewMoneyBRL(line.UnitPrice))
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	sale, err := sales.NewSale(sales.PaymentMethod(input.PaymentMethod), items)
	if err != nil {
		return nil, err
	}
	if input.CustomerID != nil {
		sale.SetCustomer(input.CustomerID)
	}
	if input.OperatorID != nil {
		sale.SetOperator(*input.OperatorID)
	}
	if input.Notes != "" {
		sale.SetNotes(input.Notes)
	}
	if input.Discount != nil {
		if err := sale.ApplyDiscount(*input.Discount); err != nil {
			return nil, err
		}
	}

	// A generated code can still lose the unique-index race against a
	// concurrent insert. The transaction rolls back whole, so the sale
	// is retried with a fresh code.
	for attempt := 0; ; attempt++ {
		err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			code, err := repos.SaleRepo().GenerateSaleCode(ctx)
			if err != nil {
				return err
			}
			if err := sale.SetSaleCode(code); err != nil {
				return err
			}
			if err := repos.SaleRepo().Save(ctx, sale); err != nil {
				return err
			}

			// One outbound ledger entry per stock-controlled product.
			// The ledger re-checks availability under the row lock, so a
			// concurrent sale that drained the stock still rolls us back.
			for _, productID := range productIDs {
				if !products[productID].HasStockControl {
					continue
				}
				_, err := s.ledger.Apply(ctx, repos.StockRepo(), repos.MovementRepo(), inventory.MovementInput{
					ProductID:  productID,
					Kind:       inventory.MovementKindOutbound,
					Quantity:   quantityByProduct[productID],
					Reason:     inventory.ReasonSale,
					Reference:  sale.SaleCode,
					OperatorID: input.OperatorID,
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil || !isSaleCodeConflict(err) || attempt >= saleCodeCommitRetries {
			break
		}
		s.logger.Warn("Sale code collided on commit, regenerating",
			zap.String("sale_code", sale.SaleCode), zap.Int("attempt", attempt+1))
	}
	if err != nil {
		if isSaleCodeConflict(err) {
			return nil, shared.NewDomainError(shared.ErrPersistenceFailure.Code,
				"Could not commit sale with a unique code")
		}
		return nil, wrapStorageError(err)
	}

	if input.IdempotencyKey != "" && s.idempotency != nil && s.idemConfig.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, input.IdempotencyKey, s.idemConfig.TTL); err != nil {
			s.logger.Warn("Failed to mark idempotency key as processed", zap.Error(err))
		}
	}

	s.logger.Info("Sale registered",
		zap.String("sale_code", sale.SaleCode),
		zap.String("payment_method", sale.PaymentMethod.String()),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.TotalAmount.StringFixed(2)))

	response := ToSaleResponse(sale)
	return &response, nil
}

// Cancel cancels a sale and restores the stock its items consumed.
// The status flip and the compensating inbound movements commit in one
// transaction; a sale that is already canceled is rejected so the
// restock never happens twice.
func (s *OrderService) Cancel(ctx context.Context, input CancelSaleInput) (*SaleResponse, error) {
	if input.SaleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Sale ID cannot be empty")
	}

	var canceled *sales.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, input.SaleID)
		if err != nil {
			return mapNotFound(err, shared.ErrOrderNotFound)
		}

		if err := sale.Cancel(input.Reason); err != nil {
			return err
		}

		// Restock exactly what the sale booked: one compensating inbound
		// per outbound movement recorded under the sale code. A product
		// whose stock control was toggled (or that was deleted) after the
		// sale neither mints nor loses stock this way.
		recorded, err := repos.MovementRepo().FindByReference(ctx, sale.SaleCode)
		if err != nil {
			return err
		}
		quantityByProduct := make(map[uuid.UUID]int64)
		productOrder := make([]uuid.UUID, 0, len(sale.Items))
		for i := range recorded {
			movement := &recorded[i]
			if movement.Kind != inventory.MovementKindOutbound {
				continue
			}
			if _, seen := quantityByProduct[movement.ProductID]; !seen {
				productOrder = append(productOrder, movement.ProductID)
			}
			quantityByProduct[movement.ProductID] += movement.Quantity
		}

		for _, productID := range productOrder {
			_, err := s.ledger.Apply(ctx, repos.StockRepo(), repos.MovementRepo(), inventory.MovementInput{
				ProductID:  productID,
				Kind:       inventory.MovementKindInbound,
				Quantity:   quantityByProduct[productID],
				Reason:     inventory.ReasonSaleCancellation,
				Reference:  sale.SaleCode,
				OperatorID: input.OperatorID,
			})
			if err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		canceled = sale
		return nil
	})
	if err != nil {
		return nil, wrapStorageError(err)
	}

	s.logger.Info("Sale canceled",
		zap.String("sale_code", canceled.SaleCode),
		zap.String("reason", input.Reason))

	response := ToSaleResponse(canceled)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, shared.ErrOrderNotFound)
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetBySaleCode retrieves a sale by its receipt code
func (s *OrderService) GetBySaleCode(ctx context.Context, code string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindBySaleCode(ctx, code)
	if err != nil {
		return nil, mapNotFound(err, shared.ErrOrderNotFound)
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sold_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := sales.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		CustomerID: filter.CustomerID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	}
	if filter.Status != nil {
		status := sales.SaleStatus(*filter.Status)
		domainFilter.Status = &status
	}
	if filter.PaymentMethod != nil {
		method := sales.PaymentMethod(*filter.PaymentMethod)
		domainFilter.PaymentMethod = &method
	}

	items, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}
	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}

	responses := make([]SaleResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToSaleResponse(&items[i]))
	}
	return responses, total, nil
}

func (s *OrderService) validateCreateInput(input CreateSaleInput) error {
	if len(input.Items) == 0 {
		return shared.NewDomainError("INVALID_ORDER", "Sale must have at least one item")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_ORDER", "Sale item is missing a product")
		}
		if line.Quantity <= 0 {
			return shared.NewDomainError("INVALID_ORDER", "Sale item quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_ORDER", "Sale item unit price cannot be negative")
		}
	}
	if !sales.PaymentMethod(input.PaymentMethod).IsValid() {
		return shared.NewDomainError("INVALID_ORDER",
			fmt.Sprintf("Unsupported payment method %q", input.PaymentMethod))
	}
	if input.Discount != nil && input.Discount.LessThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_ORDER", "Discount cannot be negative")
	}
	return nil
}

// loadProducts resolves every referenced product or fails the whole sale
func (s *OrderService) loadProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrapStorageError(err)
	}

	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND",
				fmt.Sprintf("Product %s not found", id))
		}
		if !product.IsActive {
			return nil, shared.NewDomainError("INVALID_ORDER",
				fmt.Sprintf("Product %q is not available for sale", product.Name))
		}
	}
	return products, nil
}

// mapNotFound rewrites generic NOT_FOUND repository errors to a more
// specific domain error, passing every other error through.
func mapNotFound(err error, target *shared.DomainError) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
		return target
	}
	return wrapStorageError(err)
}

// saleCodeCommitRetries bounds regeneration after a commit-time code
// collision. Collisions need two sales in the same millisecond picking
// the same random suffix, so one retry is already generous.
const saleCodeCommitRetries = 3

// isSaleCodeConflict reports whether the transaction failed on the
// sale code unique index.
func isSaleCodeConflict(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == sales.ErrCodeSaleCodeConflict
}

// wrapStorageError keeps domain errors intact and converts anything
// else (driver failures, broken connections) to PERSISTENCE_FAILURE.
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
