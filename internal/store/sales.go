package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-service/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const saleColumns = `
	s.id, s.customer_id, c.name AS customer_name, s.total, s.date, s.status, s.created_at`

const saleDetailColumns = `
	sd.id, sd.sale_id, sd.product_id, p.name AS product_name, sd.quantity, sd.price, sd.created_at`

// CustomerExists reports whether a customer row exists
func (t *Tx) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)", customerID)
	return exists, err
}

// InsertSale inserts a sale header and fills in its generated fields
func (t *Tx) InsertSale(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (customer_id, total, date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return t.tx.GetContext(ctx, sale, query,
		sale.CustomerID, sale.Total, sale.Date, sale.Status)
}

// UpdateSaleTotal overwrites the total of a sale header
func (t *Tx) UpdateSaleTotal(ctx context.Context, saleID int64, total decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE sales SET total = $1 WHERE id = $2", total, saleID)
	return err
}

// LockProducts takes row locks on the given products in ascending id order,
// so that concurrent sales touching overlapping products cannot deadlock.
func (t *Tx) LockProducts(ctx context.Context, productIDs []int64) error {
	var locked []int64
	return t.tx.SelectContext(ctx, &locked,
		"SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE", pq.Array(productIDs))
}

// GetStockForUpdate reads a product's live stock under a row lock.
// Returns ErrNotFound when the product does not exist.
func (t *Tx) GetStockForUpdate(ctx context.Context, productID int64) (*models.StockLevel, error) {
	var level models.StockLevel
	err := t.tx.GetContext(ctx, &level,
		"SELECT id, stock, price FROM products WHERE id = $1 FOR UPDATE", productID)
	if err != nil {
		return nil, translateError(err)
	}
	return &level, nil
}

// InsertSaleDetail inserts one line item
func (t *Tx) InsertSaleDetail(ctx context.Context, detail *models.SaleDetail) error {
	query := `
		INSERT INTO sale_details (sale_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return t.tx.GetContext(ctx, detail, query,
		detail.SaleID, detail.ProductID, detail.Quantity, detail.Price)
}

// AdjustStock adds delta (negative to decrement) to a product's stock
func (t *Tx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1 WHERE id = $2", delta, productID)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LockSale locks a sale header. Returns ErrNotFound when the sale does not exist.
func (t *Tx) LockSale(ctx context.Context, saleID int64) error {
	var id int64
	err := t.tx.GetContext(ctx, &id, "SELECT id FROM sales WHERE id = $1 FOR UPDATE", saleID)
	return translateError(err)
}

// GetSaleDetailsForUpdate reads and locks every line item of a sale
func (t *Tx) GetSaleDetailsForUpdate(ctx context.Context, saleID int64) ([]models.SaleDetail, error) {
	var details []models.SaleDetail
	err := t.tx.SelectContext(ctx, &details, `
		SELECT id, sale_id, product_id, quantity, price, created_at
		FROM sale_details
		WHERE sale_id = $1
		ORDER BY product_id
		FOR UPDATE`, saleID)
	return details, err
}

// DeleteSaleDetails removes every line item of a sale
func (t *Tx) DeleteSaleDetails(ctx context.Context, saleID int64) error {
	_, err := t.tx.ExecContext(ctx, "DELETE FROM sale_details WHERE sale_id = $1", saleID)
	return err
}

// DeleteSale removes a sale header
func (t *Tx) DeleteSale(ctx context.Context, saleID int64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM sales WHERE id = $1", saleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSale retrieves a sale with its customer name and line items
func (s *Store) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, `
		SELECT`+saleColumns+`
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.id
		WHERE s.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	details := []models.SaleDetail{}
	err = s.db.SelectContext(ctx, &details, `
		SELECT`+saleDetailColumns+`
		FROM sale_details sd
		LEFT JOIN products p ON sd.product_id = p.id
		WHERE sd.sale_id = $1
		ORDER BY sd.id`, id)
	if err != nil {
		return nil, err
	}
	sale.Details = details

	return &sale, nil
}

// ListSales retrieves all sale headers, newest first
func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	sales := []models.Sale{}
	err := s.db.SelectContext(ctx, &sales, `
		SELECT`+saleColumns+`
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.id
		ORDER BY s.date DESC`)
	return sales, err
}

// GetProductStocks reads the current stock of the given products
func (s *Store) GetProductStocks(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	var levels []models.StockLevel
	err := s.db.SelectContext(ctx, &levels,
		"SELECT id, stock, price FROM products WHERE id = ANY($1)", pq.Array(productIDs))
	if err != nil {
		return nil, err
	}

	stocks := make(map[int64]int, len(levels))
	for _, l := range levels {
		stocks[l.ProductID] = l.Stock
	}
	return stocks, nil
}
