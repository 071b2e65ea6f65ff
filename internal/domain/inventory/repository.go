package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// ProductStockRepository defines the interface for product stock persistence
type ProductStockRepository interface {
	// FindByID finds a stock record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductStock, error)

	// FindByProduct finds the stock record for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) (*ProductStock, error)

	// FindByProducts finds stock records for multiple products
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]ProductStock, error)

	// FindAll finds stock records matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductStock, error)

	// Save creates or updates a stock record
	Save(ctx context.Context, stock *ProductStock) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, stock *ProductStock) error

	// GetOrCreate gets the stock record for a product or creates an empty one
	GetOrCreate(ctx context.Context, productID uuid.UUID) (*ProductStock, error)

	// Delete deletes a stock record
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts stock records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// StockMovementRepository defines the interface for the append-only movement ledger
type StockMovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct finds movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements tied to a source document (e.g. sale code)
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)

	// FindAll finds movements matching the filter, newest first
	FindAll(ctx context.Context, filter MovementFilter) ([]StockMovement, error)

	// Create appends a new movement. Movements are never updated or deleted.
	Create(ctx context.Context, movement *StockMovement) error

	// CreateBatch appends multiple movements
	CreateBatch(ctx context.Context, movements []*StockMovement) error

	// Count counts movements matching the filter
	Count(ctx context.Context, filter MovementFilter) (int64, error)
}

// MovementFilter extends shared.Filter with movement-specific filters
type MovementFilter struct {
	shared.Filter
	ProductID *uuid.UUID
	Kind      *MovementKind
	Reason    string
	Reference string
	StartDate *time.Time
	EndDate   *time.Time
}
