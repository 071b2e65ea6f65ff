package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
)

func TestGormProductStockRepository_GetOrCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductStockRepository(db)
	ctx := context.Background()

	t.Run("creates an empty record when none exists", func(t *testing.T) {
		productID := uuid.New()

		stock, err := repo.GetOrCreate(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, productID, stock.ProductID)
		assert.Equal(t, int64(0), stock.Quantity)

		// Second call returns the same record
		again, err := repo.GetOrCreate(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, stock.ID, again.ID)
	})

	t.Run("returns the existing record", func(t *testing.T) {
		productID := uuid.New()
		existing, err := inventory.NewProductStock(productID, 42)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, existing))

		stock, err := repo.GetOrCreate(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, stock.ID)
		assert.Equal(t, int64(42), stock.Quantity)
	})
}

func TestGormProductStockRepository_SaveWithLock(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductStockRepository(db)
	ctx := context.Background()

	t.Run("persists the new quantity and version", func(t *testing.T) {
		stock, err := inventory.NewProductStock(uuid.New(), 10)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, stock))

		require.NoError(t, stock.Decrease(3))
		require.NoError(t, repo.SaveWithLock(ctx, stock))

		reloaded, err := repo.FindByID(ctx, stock.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), reloaded.Quantity)
		assert.Equal(t, stock.Version, reloaded.Version)
	})

	t.Run("rejects a write based on a stale version", func(t *testing.T) {
		stock, err := inventory.NewProductStock(uuid.New(), 10)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, stock))

		// Two transactions load the same version
		first, err := repo.FindByID(ctx, stock.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, stock.ID)
		require.NoError(t, err)

		require.NoError(t, first.Decrease(5))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Decrease(8))
		err = repo.SaveWithLock(ctx, second)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)

		// The first write is the only one that landed
		reloaded, err := repo.FindByID(ctx, stock.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), reloaded.Quantity)
	})
}

func TestGormProductStockRepository_FindByProducts(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductStockRepository(db)
	ctx := context.Background()

	idA, idB := uuid.New(), uuid.New()
	for _, productID := range []uuid.UUID{idA, idB} {
		stock, err := inventory.NewProductStock(productID, 5)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, stock))
	}

	stocks, err := repo.FindByProducts(ctx, []uuid.UUID{idA, idB, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, stocks, 2)

	empty, err := repo.FindByProducts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
