package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appinventory "github.com/retailpos/backend/internal/application/inventory"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product management. Creating a product with an
// initial stock books an INBOUND-like ledger entry instead of writing
// the quantity directly, so even the opening balance is on the ledger.
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	ledger       *inventory.LedgerService
	scope        appinventory.TransactionScope
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	ledger *inventory.LedgerService,
	scope appinventory.TransactionScope,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
		scope:        scope,
		logger:       logger,
	}
}

// Create registers a new product, optionally with an opening stock
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if req.Barcode != "" {
		exists, err := s.productRepo.ExistsByBarcode(ctx, req.Barcode)
		if err != nil {
			return nil, wrapStorageError(err)
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this barcode already exists")
		}
	}
	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.InitialStock < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Initial stock cannot be negative")
	}

	product, err := catalog.NewProduct(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Barcode != "" {
		if err := product.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}
	product.SetCategory(req.CategoryID)
	if req.CostPrice != nil {
		if err := product.SetPrices(req.Price, *req.CostPrice); err != nil {
			return nil, err
		}
	}
	if req.MinStock != 0 || req.MaxStock != 0 {
		if err := product.SetStockLimits(req.MinStock, req.MaxStock); err != nil {
			return nil, err
		}
	}
	if req.HasStockControl != nil && !*req.HasStockControl {
		product.DisableStockControl()
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, wrapStorageError(err)
	}

	if req.InitialStock > 0 && product.HasStockControl {
		err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			_, err := s.ledger.Apply(ctx, repos.StockRepo(), repos.MovementRepo(), inventory.MovementInput{
				ProductID:  product.ID,
				Kind:       inventory.MovementKindInbound,
				Quantity:   req.InitialStock,
				Reason:     inventory.ReasonInitialStock,
				OperatorID: req.OperatorID,
			})
			return err
		})
		if err != nil {
			return nil, wrapStorageError(err)
		}
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	response := ToProductResponse(product)
	return &response, nil
}

// Update modifies an existing product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.requireProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if req.Barcode != nil && *req.Barcode != product.Barcode {
		if *req.Barcode != "" {
			exists, err := s.productRepo.ExistsByBarcode(ctx, *req.Barcode)
			if err != nil {
				return nil, wrapStorageError(err)
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this barcode already exists")
			}
		}
		if err := product.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}
	if req.Price != nil || req.CostPrice != nil {
		price := product.Price
		costPrice := product.CostPrice
		if req.Price != nil {
			price = *req.Price
		}
		if req.CostPrice != nil {
			costPrice = *req.CostPrice
		}
		if err := product.SetPrices(price, costPrice); err != nil {
			return nil, err
		}
	}
	if req.MinStock != nil || req.MaxStock != nil {
		minStock := product.MinStock
		maxStock := product.MaxStock
		if req.MinStock != nil {
			minStock = *req.MinStock
		}
		if req.MaxStock != nil {
			maxStock = *req.MaxStock
		}
		if err := product.SetStockLimits(minStock, maxStock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, wrapStorageError(err)
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.requireProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByBarcode retrieves a product by barcode, the lookup the register
// uses on every scan.
func (s *ProductService) GetByBarcode(ctx context.Context, barcode string) (*ProductResponse, error) {
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Barcode cannot be empty")
	}
	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, mapProductNotFound(err, barcode)
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "name",
			OrderDir: "asc",
			Search:   filter.Search,
		},
		CategoryID: filter.CategoryID,
		ActiveOnly: filter.ActiveOnly,
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, total, nil
}

// Deactivate takes a product off sale without losing its history
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, err := s.requireProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := product.Deactivate(); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

// Activate puts a deactivated product back on sale
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) error {
	product, err := s.requireProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := product.Activate(); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

func (s *ProductService) requireProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductNotFound(err, id.String())
	}
	return product, nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uuid.UUID) error {
	_, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return wrapStorageError(err)
	}
	return nil
}

func mapProductNotFound(err error, ref string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
		return shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", ref))
	}
	return wrapStorageError(err)
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
