package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

type memoryStockRepo struct {
	records map[uuid.UUID]*inventory.ProductStock
}

func newMemoryStockRepo() *memoryStockRepo {
	return &memoryStockRepo{records: make(map[uuid.UUID]*inventory.ProductStock)}
}

func (r *memoryStockRepo) seed(t *testing.T, productID uuid.UUID, quantity int64) {
	t.Helper()
	stock, err := inventory.NewProductStock(productID, quantity)
	require.NoError(t, err)
	r.records[productID] = stock
}

func (r *memoryStockRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.ProductStock, error) {
	for _, stock := range r.records {
		if stock.ID == id {
			return stock, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryStockRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*inventory.ProductStock, error) {
	stock, ok := r.records[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return stock, nil
}

func (r *memoryStockRepo) FindByProducts(_ context.Context, productIDs []uuid.UUID) ([]inventory.ProductStock, error) {
	var result []inventory.ProductStock
	for _, id := range productIDs {
		if stock, ok := r.records[id]; ok {
			result = append(result, *stock)
		}
	}
	return result, nil
}

func (r *memoryStockRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.ProductStock, error) {
	var result []inventory.ProductStock
	for _, stock := range r.records {
		result = append(result, *stock)
	}
	return result, nil
}

func (r *memoryStockRepo) Save(_ context.Context, stock *inventory.ProductStock) error {
	r.records[stock.ProductID] = stock
	return nil
}

func (r *memoryStockRepo) SaveWithLock(_ context.Context, stock *inventory.ProductStock) error {
	stock.IncrementVersion()
	r.records[stock.ProductID] = stock
	return nil
}

func (r *memoryStockRepo) GetOrCreate(_ context.Context, productID uuid.UUID) (*inventory.ProductStock, error) {
	if stock, ok := r.records[productID]; ok {
		return stock, nil
	}
	stock, err := inventory.NewProductStock(productID, 0)
	if err != nil {
		return nil, err
	}
	r.records[productID] = stock
	return stock, nil
}

func (r *memoryStockRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *memoryStockRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.records)), nil
}

type memoryMovementRepo struct {
	movements []*inventory.StockMovement
}

func (r *memoryMovementRepo) FindByID(_ context.Context, _ uuid.UUID) (*inventory.StockMovement, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryMovementRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var result []inventory.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *memoryMovementRepo) FindByReference(_ context.Context, reference string) ([]inventory.StockMovement, error) {
	var result []inventory.StockMovement
	for _, m := range r.movements {
		if m.Reference == reference {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *memoryMovementRepo) FindAll(_ context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, error) {
	var result []inventory.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		if filter.Reason != "" && m.Reason != filter.Reason {
			continue
		}
		result = append(result, *m)
	}
	return result, nil
}

func (r *memoryMovementRepo) Create(_ context.Context, movement *inventory.StockMovement) error {
	r.movements = append(r.movements, movement)
	return nil
}

func (r *memoryMovementRepo) CreateBatch(_ context.Context, movements []*inventory.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memoryMovementRepo) Count(_ context.Context, filter inventory.MovementFilter) (int64, error) {
	matching, err := r.FindAll(context.Background(), filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matching)), nil
}

type stockServiceFixture struct {
	service   *StockService
	products  *MockProductRepository
	stocks    *memoryStockRepo
	movements *memoryMovementRepo
}

func newStockServiceFixture() *stockServiceFixture {
	products := new(MockProductRepository)
	stocks := newMemoryStockRepo()
	movements := &memoryMovementRepo{}
	scope := NewNoOpTransactionScope(stocks, movements)
	service := NewStockService(stocks, movements, products, inventory.NewLedgerService(), scope, zap.NewNop())
	return &stockServiceFixture{service: service, products: products, stocks: stocks, movements: movements}
}

func newProduct(t *testing.T, name string, price float64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, decimal.NewFromFloat(price))
	require.NoError(t, err)
	return product
}

func TestStockServiceAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("corrects the stock to the counted quantity", func(t *testing.T) {
		f := newStockServiceFixture()
		product := newProduct(t, "Arroz 5kg", 24.90)
		f.stocks.seed(t, product.ID, 12)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)

		response, err := f.service.Adjust(ctx, AdjustStockInput{
			ProductID:       product.ID,
			CountedQuantity: 9,
			Notes:           "quarterly count",
		})

		require.NoError(t, err)
		assert.Equal(t, "ADJUSTMENT", response.Kind)
		assert.Equal(t, int64(12), response.StockBefore)
		assert.Equal(t, int64(9), response.StockAfter)
		assert.Equal(t, int64(9), f.stocks.records[product.ID].Quantity)
		require.Len(t, f.movements.movements, 1)
	})

	t.Run("counting to zero is allowed", func(t *testing.T) {
		f := newStockServiceFixture()
		product := newProduct(t, "Feijão 1kg", 8.50)
		f.stocks.seed(t, product.ID, 3)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)

		response, err := f.service.Adjust(ctx, AdjustStockInput{ProductID: product.ID, CountedQuantity: 0})

		require.NoError(t, err)
		assert.Equal(t, int64(0), response.StockAfter)
		assert.Equal(t, int64(0), f.stocks.records[product.ID].Quantity)
	})

	t.Run("negative count is rejected", func(t *testing.T) {
		f := newStockServiceFixture()

		_, err := f.service.Adjust(ctx, AdjustStockInput{ProductID: uuid.New(), CountedQuantity: -1})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		assert.Empty(t, f.movements.movements)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		f := newStockServiceFixture()
		productID := uuid.New()
		f.products.On("FindByID", ctx, productID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Adjust(ctx, AdjustStockInput{ProductID: productID, CountedQuantity: 5})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_NOT_FOUND", domainErr.Code)
	})
}

func TestStockServiceReceive(t *testing.T) {
	ctx := context.Background()

	t.Run("books an inbound movement", func(t *testing.T) {
		f := newStockServiceFixture()
		product := newProduct(t, "Café 500g", 18.90)
		f.stocks.seed(t, product.ID, 2)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)

		response, err := f.service.Receive(ctx, ReceiveStockInput{
			ProductID: product.ID,
			Quantity:  24,
			Reference: "NF-4411",
		})

		require.NoError(t, err)
		assert.Equal(t, "INBOUND", response.Kind)
		assert.Equal(t, int64(26), response.StockAfter)
		assert.Equal(t, "NF-4411", response.Reference)
		assert.Equal(t, int64(26), f.stocks.records[product.ID].Quantity)
	})

	t.Run("creates the stock record for a first receipt", func(t *testing.T) {
		f := newStockServiceFixture()
		product := newProduct(t, "Sabão em pó", 11.20)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)

		response, err := f.service.Receive(ctx, ReceiveStockInput{ProductID: product.ID, Quantity: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(0), response.StockBefore)
		assert.Equal(t, int64(10), response.StockAfter)
	})

	t.Run("zero or negative quantity is rejected", func(t *testing.T) {
		f := newStockServiceFixture()

		for _, quantity := range []int64{0, -5} {
			_, err := f.service.Receive(ctx, ReceiveStockInput{ProductID: uuid.New(), Quantity: quantity})
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		}
	})
}

func TestStockServiceCurrentStock(t *testing.T) {
	ctx := context.Background()
	f := newStockServiceFixture()
	productID := uuid.New()
	f.stocks.seed(t, productID, 7)

	quantity, err := f.service.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), quantity)

	// A product with no stock record reads as zero.
	quantity, err = f.service.CurrentStock(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)
}

func TestStockServiceListMovements(t *testing.T) {
	ctx := context.Background()
	f := newStockServiceFixture()
	product := newProduct(t, "Leite 1L", 5.80)
	f.stocks.seed(t, product.ID, 0)
	f.products.On("FindByID", ctx, product.ID).Return(product, nil)

	_, err := f.service.Receive(ctx, ReceiveStockInput{ProductID: product.ID, Quantity: 30})
	require.NoError(t, err)
	_, err = f.service.Adjust(ctx, AdjustStockInput{ProductID: product.ID, CountedQuantity: 28})
	require.NoError(t, err)

	responses, total, err := f.service.ListMovements(ctx, MovementListFilter{ProductID: &product.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, responses, 2)

	kind := "INBOUND"
	responses, total, err = f.service.ListMovements(ctx, MovementListFilter{Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	assert.Equal(t, int64(30), responses[0].Quantity)

	bad := "SIDEWAYS"
	_, _, err = f.service.ListMovements(ctx, MovementListFilter{Kind: &bad})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestStockServiceListLowStock(t *testing.T) {
	ctx := context.Background()
	f := newStockServiceFixture()

	low := newProduct(t, "Óleo de soja", 9.90)
	require.NoError(t, low.SetStockLimits(10, 100))
	ok := newProduct(t, "Açúcar 1kg", 4.70)
	require.NoError(t, ok.SetStockLimits(5, 100))
	untracked := newProduct(t, "Entrega", 15)
	untracked.DisableStockControl()

	f.stocks.seed(t, low.ID, 4)
	f.stocks.seed(t, ok.ID, 50)

	f.products.On("FindAll", ctx, mock.Anything).Return([]catalog.Product{*low, *ok, *untracked}, nil)

	items, err := f.service.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ProductID)
	assert.Equal(t, int64(4), items[0].Quantity)
	assert.Equal(t, int64(10), items[0].MinStock)
}

func TestStockServiceReport(t *testing.T) {
	ctx := context.Background()
	f := newStockServiceFixture()

	rice := newProduct(t, "Arroz 5kg", 24.90)
	beans := newProduct(t, "Feijão 1kg", 8.50)
	f.stocks.seed(t, rice.ID, 10)
	f.stocks.seed(t, beans.ID, 4)

	f.products.On("FindByID", ctx, rice.ID).Return(rice, nil)
	f.products.On("FindByID", ctx, beans.ID).Return(beans, nil)
	f.products.On("FindAll", ctx, mock.Anything).Return([]catalog.Product{*rice, *beans}, nil)

	report, err := f.service.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.TotalProducts)
	assert.Equal(t, int64(14), report.TotalUnits)
	assert.Equal(t, "283.00", report.TotalValue.StringFixed(2))
	assert.Equal(t, 0, report.LowStockCount)
}
