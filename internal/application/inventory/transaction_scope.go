package inventory

import (
	"context"

	"github.com/retailpos/backend/internal/domain/inventory"
)

// TransactionScope runs a function against repositories bound to a
// single database transaction. A returned error rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories participating in
// the current transaction.
type TransactionalRepositories interface {
	StockRepo() inventory.ProductStockRepository
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope executes the function directly against the
// injected repositories, without transaction boundaries. Used in tests
// and with storage backends that do not support transactions.
type NoOpTransactionScope struct {
	stockRepo    inventory.ProductStockRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	stockRepo inventory.ProductStockRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs fn directly without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRepo returns the product stock repository.
func (s *NoOpTransactionScope) StockRepo() inventory.ProductStockRepository {
	return s.stockRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
