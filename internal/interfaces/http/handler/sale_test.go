package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/catalog"
	domaininventory "github.com/retailpos/backend/internal/domain/inventory"
	domainsales "github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// saleAPIFixture wires the sale handler against a real service stack on
// a throwaway SQLite database, so responses and status codes reflect
// actual domain behavior.
type saleAPIFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	products catalog.ProductRepository
	stocks   domaininventory.ProductStockRepository
	service  *salesapp.OrderService
}

func newSaleAPIFixture(t *testing.T) *saleAPIFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&domaininventory.ProductStock{},
		&domaininventory.StockMovement{},
		&domainsales.Sale{},
		&domainsales.SaleItem{},
	))

	saleRepo := persistence.NewGormSaleRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	stockRepo := persistence.NewGormProductStockRepository(db)
	scope := persistence.NewGormSalesTransactionScope(db)

	service := salesapp.NewOrderService(
		saleRepo,
		productRepo,
		stockRepo,
		domaininventory.NewLedgerService(),
		scope,
		zap.NewNop(),
	)

	router := gin.New()
	saleHandler := NewSaleHandler(service)
	api := router.Group("/api/v1")
	api.POST("/sales", saleHandler.Create)
	api.GET("/sales", saleHandler.List)
	api.GET("/sales/:id", saleHandler.GetByID)
	api.GET("/sales/code/:code", saleHandler.GetByCode)
	api.POST("/sales/:id/cancel", saleHandler.Cancel)

	return &saleAPIFixture{
		router:   router,
		db:       db,
		products: productRepo,
		stocks:   stockRepo,
		service:  service,
	}
}

// seedProduct creates a product with the given stock balance
func (f *saleAPIFixture) seedProduct(t *testing.T, name string, price float64, quantity int64) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	product, err := catalog.NewProduct(name, decimal.NewFromFloat(price))
	require.NoError(t, err)
	require.NoError(t, f.products.Save(ctx, product))

	stock, err := f.stocks.GetOrCreate(ctx, product.ID)
	require.NoError(t, err)
	require.NoError(t, stock.Increase(quantity))
	require.NoError(t, f.stocks.SaveWithLock(ctx, stock))

	return product
}

func (f *saleAPIFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSaleAPI_CreateSale(t *testing.T) {
	f := newSaleAPIFixture(t)
	coffee := f.seedProduct(t, "Coffee 500g", 19.90, 10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "cash",
		"items": []gin.H{
			{"product_id": coffee.ID.String(), "quantity": 2, "unit_price": "15.00"},
		},
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.NotEmpty(t, data["sale_code"])

	// The total comes from the price on the request, not the 19.90
	// catalog price.
	total, err := decimal.NewFromString(fmt.Sprint(data["total_amount"]))
	require.NoError(t, err)
	assert.Equal(t, "30.00", total.StringFixed(2))

	// The sale decremented stock
	stock, err := f.stocks.FindByProduct(context.Background(), coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stock.Quantity)
}

func TestSaleAPI_InsufficientStockReturns422(t *testing.T) {
	f := newSaleAPIFixture(t)
	coffee := f.seedProduct(t, "Coffee 500g", 19.90, 1)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "cash",
		"items": []gin.H{
			{"product_id": coffee.ID.String(), "quantity": 5, "unit_price": "19.90"},
		},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
}

func TestSaleAPI_UnknownProductReturns404(t *testing.T) {
	f := newSaleAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "cash",
		"items": []gin.H{
			{"product_id": uuid.NewString(), "quantity": 1, "unit_price": "5.00"},
		},
	}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestSaleAPI_EmptyItemsRejected(t *testing.T) {
	f := newSaleAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "cash",
		"items":          []gin.H{},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleAPI_MissingUnitPriceRejected(t *testing.T) {
	f := newSaleAPIFixture(t)
	coffee := f.seedProduct(t, "Coffee 500g", 19.90, 10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "cash",
		"items": []gin.H{
			{"product_id": coffee.ID.String(), "quantity": 1},
		},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleAPI_CancelRestoresStockAndSecondCancelFails(t *testing.T) {
	f := newSaleAPIFixture(t)
	coffee := f.seedProduct(t, "Coffee 500g", 19.90, 10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "cash",
		"items": []gin.H{
			{"product_id": coffee.ID.String(), "quantity": 3, "unit_price": "19.90"},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	saleID := decodeResponse(t, w).Data.(map[string]any)["id"].(string)

	cancelPath := fmt.Sprintf("/api/v1/sales/%s/cancel", saleID)

	w = f.do(t, http.MethodPost, cancelPath, gin.H{"reason": "customer gave up"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "canceled", data["status"])

	stock, err := f.stocks.FindByProduct(context.Background(), coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock.Quantity)

	// A second cancel of the same sale is rejected
	w = f.do(t, http.MethodPost, cancelPath, gin.H{"reason": "again"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyCanceled, decodeResponse(t, w).Error.Code)
}

func TestSaleAPI_CancelUnknownSaleReturns404(t *testing.T) {
	f := newSaleAPIFixture(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sales/%s/cancel", uuid.NewString()),
		gin.H{"reason": "mistake"}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaleAPI_IdempotencyKeyReplayReturns409(t *testing.T) {
	f := newSaleAPIFixture(t)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	f.service.SetIdempotencyStore(store, shared.IdempotencyConfig{Enabled: true, TTL: time.Minute})

	coffee := f.seedProduct(t, "Coffee 500g", 19.90, 10)
	body := gin.H{
		"payment_method": "cash",
		"items": []gin.H{
			{"product_id": coffee.ID.String(), "quantity": 1, "unit_price": "19.90"},
		},
	}
	headers := map[string]string{IdempotencyKeyHeader: "checkout-42"}

	w := f.do(t, http.MethodPost, "/api/v1/sales", body, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/sales", body, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, decodeResponse(t, w).Error.Code)
}

func TestSaleAPI_GetByCodeAndList(t *testing.T) {
	f := newSaleAPIFixture(t)
	coffee := f.seedProduct(t, "Coffee 500g", 19.90, 10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", gin.H{
		"payment_method": "pix",
		"items": []gin.H{
			{"product_id": coffee.ID.String(), "quantity": 1, "unit_price": "19.90"},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	saleCode := decodeResponse(t, w).Data.(map[string]any)["sale_code"].(string)

	w = f.do(t, http.MethodGet, "/api/v1/sales/code/"+saleCode, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, saleCode, decodeResponse(t, w).Data.(map[string]any)["sale_code"])

	w = f.do(t, http.MethodGet, "/api/v1/sales?status=completed&payment_method=pix", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}
