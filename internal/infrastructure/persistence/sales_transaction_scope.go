package persistence

import (
	"context"

	"gorm.io/gorm"

	appsales "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/sales"
)

// GormSalesTransactionScope implements the checkout TransactionScope using
// GORM transactions, so a sale header, its items, the stock decrements and
// the ledger entries commit or roll back as one unit.
type GormSalesTransactionScope struct {
	db *gorm.DB
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope
func NewGormSalesTransactionScope(db *gorm.DB) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSalesTransactionalRepositories{tx: tx})
	})
}

type gormSalesTransactionalRepositories struct {
	tx *gorm.DB
}

// SaleRepo returns the sale repository scoped to the current transaction
func (r *gormSalesTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// StockRepo returns the product stock repository scoped to the current transaction
func (r *gormSalesTransactionalRepositories) StockRepo() inventory.ProductStockRepository {
	return NewGormProductStockRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction
func (r *gormSalesTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appsales.TransactionScope = (*GormSalesTransactionScope)(nil)
var _ appsales.TransactionalRepositories = (*gormSalesTransactionalRepositories)(nil)
