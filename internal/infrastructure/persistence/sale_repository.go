package persistence

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
)

const (
	saleCodeAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	saleCodeSuffixLen   = 5
	saleCodeMaxAttempts = 5
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID, including its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindBySaleCode finds a sale by its human-facing code
func (r *GormSaleRepository) FindBySaleCode(ctx context.Context, saleCode string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sale_code = ?", saleCode).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindAll finds sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]sales.Sale, error) {
	var results []sales.Sale
	query := r.applySaleFilter(r.db.WithContext(ctx).Model(&sales.Sale{}), filter)
	query = r.applyPagination(query, filter.Filter).Preload("Items")

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Save creates or updates a sale together with its items. A sale code
// that lost the unique-index race against a concurrent insert comes
// back as SALE_CODE_CONFLICT so the caller can regenerate and retry.
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(sale).Error; err != nil {
			if isSaleCodeConflict(err) {
				return shared.NewDomainError(sales.ErrCodeSaleCodeConflict,
					"Sale code already in use: "+sale.SaleCode)
			}
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(sale.Items))
		for i, item := range sale.Items {
			currentItemIDs[i] = item.ID
		}

		if len(currentItemIDs) > 0 {
			if err := tx.Where("sale_id = ? AND id NOT IN ?", sale.ID, currentItemIDs).
				Delete(&sales.SaleItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("sale_id = ?", sale.ID).
				Delete(&sales.SaleItem{}).Error; err != nil {
				return err
			}
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			if err := tx.Save(&sale.Items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveWithLock saves a sale guarded by its version. The aggregate increments
// the version on every state change, so the row is matched against the
// previous version and the write is rejected when another transaction got
// there first.
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]interface{}{
			"customer_id":   sale.CustomerID,
			"status":        sale.Status,
			"total_amount":  sale.TotalAmount,
			"discount":      sale.Discount,
			"notes":         sale.Notes,
			"canceled_at":   sale.CanceledAt,
			"cancel_reason": sale.CancelReason,
			"version":       sale.Version,
			"updated_at":    sale.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Sale was modified by another transaction")
	}
	return nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter sales.SaleFilter) (int64, error) {
	var count int64
	query := r.applySaleFilter(r.db.WithContext(ctx).Model(&sales.Sale{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateSaleCode produces a unique sale code. The millisecond timestamp
// keeps codes roughly sortable and the random suffix disambiguates sales
// created within the same millisecond; a collision triggers a retry.
func (r *GormSaleRepository) GenerateSaleCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < saleCodeMaxAttempts; attempt++ {
		suffix, err := randomBase36(saleCodeSuffixLen)
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("V%d%s", time.Now().UnixMilli(), suffix)

		var count int64
		if err := r.db.WithContext(ctx).
			Model(&sales.Sale{}).
			Where("sale_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", shared.NewDomainError("PERSISTENCE_FAILURE", "Could not generate a unique sale code")
}

// isSaleCodeConflict recognizes a unique violation on the sale code
// index for both supported drivers.
func isSaleCodeConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "idx_sales_code") || // postgres constraint name
		strings.Contains(msg, "sales.sale_code") // sqlite UNIQUE constraint message
}

func randomBase36(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(saleCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = saleCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func (r *GormSaleRepository) applySaleFilter(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.StartDate != nil {
		query = query.Where("sold_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("sold_at <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		query = query.Where("sale_code LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func (r *GormSaleRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "sold_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
