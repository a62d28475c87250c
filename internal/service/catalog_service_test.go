package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inventory-service/internal/apperr"
	"inventory-service/internal/models"
	"inventory-service/internal/redisclient"
	"inventory-service/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{"id", "name", "description", "price", "stock", "category", "supplier_id", "created_at"}

func newCatalogFixture(t *testing.T) (*store.Store, sqlmock.Sqlmock, *StockService, *redisclient.Client) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	mr := miniredis.RunT(t)
	cache, err := redisclient.NewClient(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(mockDB, "postgres"))
	return st, mock, NewStockService(st, cache), cache
}

func TestCreateProductValidation(t *testing.T) {
	st, mock, stock, _ := newCatalogFixture(t)
	ps := NewProductService(st, stock)

	tests := []struct {
		name    string
		product models.Product
	}{
		{"blank name", models.Product{Name: "   ", Price: decimal.NewFromInt(1)}},
		{"negative price", models.Product{Name: "Pan", Price: decimal.NewFromInt(-1)}},
		{"negative stock", models.Product{Name: "Pan", Stock: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			_, err := ps.CreateProduct(context.Background(), &p)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductRefreshesCachedStock(t *testing.T) {
	st, mock, stock, cache := newCatalogFixture(t)
	ps := NewProductService(st, stock)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, 1, 100))

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(1, "Manzanas", "Manzanas rojas frescas", "2.50", 40, "Frutas", nil, time.Now()))

	p := &models.Product{ID: 1, Name: "Manzanas", Price: decimal.RequireFromString("2.50"), Stock: 40, Category: "Frutas"}
	updated, err := ps.UpdateProduct(ctx, p)

	require.NoError(t, err)
	assert.Equal(t, 40, updated.Stock)

	cached, err := cache.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, cached)
}

func TestCreateProductUnknownSupplier(t *testing.T) {
	st, mock, stock, _ := newCatalogFixture(t)
	ps := NewProductService(st, stock)
	supplierID := int64(77)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "products_supplier_id_fkey"})

	_, err := ps.CreateProduct(context.Background(), &models.Product{Name: "Pan", SupplierID: &supplierID})

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "supplier 77 not found", apperr.PublicMessage(err))
}

func TestDeleteProductReferencedBySales(t *testing.T) {
	st, mock, stock, cache := newCatalogFixture(t)
	ps := NewProductService(st, stock)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, 3, 5))

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "sale_details_product_id_fkey"})

	_, err := ps.DeleteProduct(ctx, 3)

	assert.True(t, apperr.Is(err, apperr.KindConflict))

	cached, err := cache.GetStock(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, cached)
}

func TestDeleteProductInvalidatesCache(t *testing.T) {
	st, mock, stock, cache := newCatalogFixture(t)
	ps := NewProductService(st, stock)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, 3, 5))

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(3, "Leche", "Leche entera 1L", "1.20", 5, "Lácteos", nil, time.Now()))

	deleted, err := ps.DeleteProduct(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, "Leche", deleted.Name)

	_, err = cache.GetStock(ctx, 3)
	assert.ErrorIs(t, err, redisclient.ErrCacheMiss)
}

func TestGetCustomerNotFound(t *testing.T) {
	st, mock, _, _ := newCatalogFixture(t)
	cs := NewCustomerService(st)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := cs.GetCustomer(context.Background(), 12)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "customer 12 not found", apperr.PublicMessage(err))
}

func TestCreateSupplierRequiresName(t *testing.T) {
	st, mock, _, _ := newCatalogFixture(t)
	ss := NewSupplierService(st)

	_, err := ss.CreateSupplier(context.Background(), &models.Supplier{Email: "ventas@example.com"})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStockFallsBackToDatabase(t *testing.T) {
	_, mock, stock, cache := newCatalogFixture(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "description", "price", "stock", "category", "supplier_id", "supplier_name", "created_at"}).
			AddRow(2, "Plátanos", "Plátanos maduros", "1.80", 150, "Frutas", nil, nil, time.Now()))

	got, err := stock.GetStock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 150, got)

	cached, err := cache.GetStock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 150, cached)

	// served from cache, no second query
	got, err = stock.GetStock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 150, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshStocksDropsDeletedProducts(t *testing.T) {
	_, mock, stock, cache := newCatalogFixture(t)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, 1, 3))
	require.NoError(t, cache.SetStock(ctx, 9, 3))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, stock, price FROM products WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stock", "price"}).AddRow(1, 8, "2.50"))

	require.NoError(t, stock.RefreshStocks(ctx, []int64{1, 9}))

	cached, err := cache.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, cached)

	_, err = cache.GetStock(ctx, 9)
	assert.ErrorIs(t, err, redisclient.ErrCacheMiss)
}
