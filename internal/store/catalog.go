package store

import (
	"context"

	"inventory-service/internal/models"
)

const productColumns = `id, name, description, price, stock, category, supplier_id, created_at`

const customerColumns = `id, name, email, phone, address, preferred, credit_limit, created_at`

const supplierColumns = `id, name, email, phone, address, active, credit_limit, created_at`

// ListProducts retrieves products whose name or description contains search,
// optionally restricted to a category
func (s *Store) ListProducts(ctx context.Context, search, category string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.category,
		       p.supplier_id, s.name AS supplier_name, p.created_at
		FROM products p
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		WHERE (LOWER(p.name) LIKE LOWER($1) OR LOWER(p.description) LIKE LOWER($1))
		  AND ($2::text = '' OR p.category = $2)
		ORDER BY p.name`, "%"+search+"%", category)
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.category,
		       p.supplier_id, s.name AS supplier_name, p.created_at
		FROM products p
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		WHERE p.id = $1`, id)
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, category, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	return translateError(s.db.GetContext(ctx, p, query,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.SupplierID))
}

// UpdateProduct overwrites a product. Returns ErrNotFound when it does not exist.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category = $5, supplier_id = $6
		WHERE id = $7
		RETURNING ` + productColumns

	return translateError(s.db.GetContext(ctx, p, query,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.SupplierID, p.ID))
}

// DeleteProduct deletes a product and returns the removed row
func (s *Store) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"DELETE FROM products WHERE id = $1 RETURNING "+productColumns, id)
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// ListCustomers retrieves customers whose name contains search
func (s *Store) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := s.db.SelectContext(ctx, &customers,
		"SELECT "+customerColumns+" FROM customers WHERE name ILIKE $1 ORDER BY name",
		"%"+search+"%")
	return customers, err
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

// CreateCustomer creates a new customer
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, address, preferred, credit_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + customerColumns

	return translateError(s.db.GetContext(ctx, c, query,
		c.Name, c.Email, c.Phone, c.Address, c.Preferred, c.CreditLimit))
}

// UpdateCustomer overwrites a customer. Returns ErrNotFound when it does not exist.
func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4, preferred = $5, credit_limit = $6
		WHERE id = $7
		RETURNING ` + customerColumns

	return translateError(s.db.GetContext(ctx, c, query,
		c.Name, c.Email, c.Phone, c.Address, c.Preferred, c.CreditLimit, c.ID))
}

// DeleteCustomer deletes a customer and returns the removed row
func (s *Store) DeleteCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer,
		"DELETE FROM customers WHERE id = $1 RETURNING "+customerColumns, id)
	if err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

// ListSuppliers retrieves suppliers whose name contains search
func (s *Store) ListSuppliers(ctx context.Context, search string) ([]models.Supplier, error) {
	suppliers := []models.Supplier{}
	err := s.db.SelectContext(ctx, &suppliers,
		"SELECT "+supplierColumns+" FROM suppliers WHERE name ILIKE $1 ORDER BY name",
		"%"+search+"%")
	return suppliers, err
}

// GetSupplierByID retrieves a supplier by ID
func (s *Store) GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.GetContext(ctx, &supplier,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &supplier, nil
}

// CreateSupplier creates a new supplier
func (s *Store) CreateSupplier(ctx context.Context, sup *models.Supplier) error {
	query := `
		INSERT INTO suppliers (name, email, phone, address, active, credit_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + supplierColumns

	return translateError(s.db.GetContext(ctx, sup, query,
		sup.Name, sup.Email, sup.Phone, sup.Address, sup.Active, sup.CreditLimit))
}

// UpdateSupplier overwrites a supplier. Returns ErrNotFound when it does not exist.
func (s *Store) UpdateSupplier(ctx context.Context, sup *models.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $1, email = $2, phone = $3, address = $4, active = $5, credit_limit = $6
		WHERE id = $7
		RETURNING ` + supplierColumns

	return translateError(s.db.GetContext(ctx, sup, query,
		sup.Name, sup.Email, sup.Phone, sup.Address, sup.Active, sup.CreditLimit, sup.ID))
}

// DeleteSupplier deletes a supplier and returns the removed row
func (s *Store) DeleteSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.GetContext(ctx, &supplier,
		"DELETE FROM suppliers WHERE id = $1 RETURNING "+supplierColumns, id)
	if err != nil {
		return nil, translateError(err)
	}
	return &supplier, nil
}
