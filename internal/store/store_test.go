package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	return NewStoreWithDB(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestRunInTxCommits(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock + $1 WHERE id = $2")).
		WithArgs(-3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTx(ctx, func(tx *Tx) error {
		return tx.AdjustStock(ctx, 1, -3)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	bodyErr := errors.New("line rejected")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock + $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx *Tx) error {
		if err := tx.AdjustStock(ctx, 1, -3); err != nil {
			return err
		}
		return bodyErr
	})

	assert.ErrorIs(t, err, bodyErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.RunInTx(context.Background(), func(tx *Tx) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxBeginFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err := store.RunInTx(context.Background(), func(tx *Tx) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxCommitFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := store.RunInTx(context.Background(), func(tx *Tx) error { return nil })

	assert.ErrorContains(t, err, "failed to commit transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStockForUpdateMissingProduct(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, stock, price FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stock", "price"}))
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx *Tx) error {
		_, err := tx.GetStockForUpdate(ctx, 42)
		return err
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockMissingProduct(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock + $1 WHERE id = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.RunInTx(ctx, func(tx *Tx) error {
		return tx.AdjustStock(ctx, 9, 2)
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSaleNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sales s")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	sale, err := store.GetSale(context.Background(), 5)

	assert.Nil(t, sale)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSaleWithDetails(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN customers c ON s.customer_id = c.id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "customer_id", "customer_name", "total", "date", "status", "created_at"}).
			AddRow(1, 1, "Juan Pérez", "7.50", now, models.SaleStatusCompleted, now))
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN products p ON sd.product_id = p.id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "sale_id", "product_id", "product_name", "quantity", "price", "created_at"}).
			AddRow(10, 1, 3, "Manzanas", 3, "2.50", now))

	sale, err := store.GetSale(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, sale.CustomerName)
	assert.Equal(t, "Juan Pérez", *sale.CustomerName)
	assert.True(t, decimal.RequireFromString("7.5").Equal(sale.Total))
	require.Len(t, sale.Details, 1)
	assert.Equal(t, 3, sale.Details[0].Quantity)
	assert.True(t, decimal.RequireFromString("2.5").Equal(sale.Details[0].Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSalesEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.date DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	sales, err := store.ListSales(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)
}

func TestDeleteProductReferenced(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "sale_details_product_id_fkey"})

	product, err := store.DeleteProduct(context.Background(), 3)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrReferenced)
}

func TestUpdateCustomerNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE customers")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := store.UpdateCustomer(context.Background(), &models.Customer{ID: 77, Name: "Ana"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProductsBindsSearchPattern(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.name")).
		WithArgs("%man%", "Frutas").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "description", "price", "stock", "category", "supplier_id", "supplier_name", "created_at"}).
			AddRow(1, "Manzanas", "Manzanas rojas frescas", "2.50", 100, "Frutas", nil, nil, now))

	products, err := store.ListProducts(context.Background(), "man", "Frutas")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].SupplierID)
	assert.Equal(t, 100, products[0].Stock)
}

func TestMigrateAppliesEveryStatement(t *testing.T) {
	store, mock := newMockStore(t)

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedSkipsPopulatedTables(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM suppliers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	require.NoError(t, store.Seed(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
