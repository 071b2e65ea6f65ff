package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/retailpos/backend/internal/application/inventory"
	"github.com/retailpos/backend/internal/domain/inventory"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions, keeping a stock update and its ledger entry atomic.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryTransactionalRepositories{tx: tx})
	})
}

type gormInventoryTransactionalRepositories struct {
	tx *gorm.DB
}

// StockRepo returns the product stock repository scoped to the current transaction
func (r *gormInventoryTransactionalRepositories) StockRepo() inventory.ProductStockRepository {
	return NewGormProductStockRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction
func (r *gormInventoryTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormInventoryTransactionalRepositories)(nil)
