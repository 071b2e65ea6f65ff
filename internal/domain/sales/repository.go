package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// ErrCodeSaleCodeConflict is returned by Save when another sale took
// the same code between generation and insert. The caller regenerates
// the code and retries; the condition is not reported to clients.
const ErrCodeSaleCodeConflict = "SALE_CODE_CONFLICT"

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale (with items) by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindBySaleCode finds a sale (with items) by its receipt code
	FindBySaleCode(ctx context.Context, code string) (*Sale, error)

	// FindAll finds sales matching the filter, newest first
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, error)

	// Save creates or updates a sale with its items
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, sale *Sale) error

	// Count counts sales matching the filter
	Count(ctx context.Context, filter SaleFilter) (int64, error)

	// GenerateSaleCode generates a new unique receipt code
	GenerateSaleCode(ctx context.Context) (string, error)
}

// SaleFilter extends shared.Filter with sale-specific filters
type SaleFilter struct {
	shared.Filter
	Status        *SaleStatus
	PaymentMethod *PaymentMethod
	CustomerID    *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
}
