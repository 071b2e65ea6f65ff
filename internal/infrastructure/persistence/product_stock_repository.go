package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductStockRepository implements ProductStockRepository using GORM
type GormProductStockRepository struct {
	db *gorm.DB
}

// NewGormProductStockRepository creates a new GormProductStockRepository
func NewGormProductStockRepository(db *gorm.DB) *GormProductStockRepository {
	return &GormProductStockRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormProductStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductStock, error) {
	var stock inventory.ProductStock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByProduct finds the stock record for a product
func (r *GormProductStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.ProductStock, error) {
	var stock inventory.ProductStock
	if err := r.db.WithContext(ctx).First(&stock, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByProducts finds stock records for multiple products
func (r *GormProductStockRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.ProductStock, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var stocks []inventory.ProductStock
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindAll finds stock records matching the filter
func (r *GormProductStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.ProductStock, error) {
	var stocks []inventory.ProductStock
	query := r.db.WithContext(ctx).Model(&inventory.ProductStock{})

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, StockSortFields, "updated_at")
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}

	if err := query.Order(orderBy + " " + orderDir).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Save creates or updates a stock record without a version check
func (r *GormProductStockRepository) Save(ctx context.Context, stock *inventory.ProductStock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// SaveWithLock saves with optimistic locking. The caller increments the
// version before saving; the update only lands if no concurrent writer
// got there first, otherwise the transaction must be retried or aborted.
func (r *GormProductStockRepository) SaveWithLock(ctx context.Context, stock *inventory.ProductStock) error {
	stock.IncrementVersion()

	result := r.db.WithContext(ctx).
		Model(stock).
		Where("id = ? AND version = ?", stock.ID, stock.Version-1).
		Updates(map[string]interface{}{
			"quantity":   stock.Quantity,
			"version":    stock.Version,
			"updated_at": stock.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Stock record was modified by another transaction")
	}
	return nil
}

// GetOrCreate gets the stock record for a product or creates an empty one
func (r *GormProductStockRepository) GetOrCreate(ctx context.Context, productID uuid.UUID) (*inventory.ProductStock, error) {
	stock, err := r.FindByProduct(ctx, productID)
	if err == nil {
		return stock, nil
	}
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrNotFound.Code {
		return nil, err
	}

	stock, err = inventory.NewProductStock(productID, 0)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(stock).Error; err != nil {
		return nil, err
	}
	return stock, nil
}

// Delete deletes a stock record
func (r *GormProductStockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.ProductStock{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts stock records matching the filter
func (r *GormProductStockRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.ProductStock{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductStockRepository implements ProductStockRepository
var _ inventory.ProductStockRepository = (*GormProductStockRepository)(nil)
