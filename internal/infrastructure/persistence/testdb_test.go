package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sales"
)

// newTestDB opens a throwaway SQLite database with the full schema. A file
// in t.TempDir() is used instead of :memory: so that transactions and plain
// queries, which run on different pooled connections, see the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&inventory.ProductStock{},
		&inventory.StockMovement{},
		&sales.Sale{},
		&sales.SaleItem{},
		&partner.Customer{},
		&identity.User{},
	)
	require.NoError(t, err)

	return db
}
