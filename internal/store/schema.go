package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT true,
		credit_limit DECIMAL(10,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category VARCHAR(50) NOT NULL DEFAULT '',
		supplier_id INTEGER REFERENCES suppliers(id) ON DELETE SET NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		preferred BOOLEAN NOT NULL DEFAULT false,
		credit_limit DECIMAL(10,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id SERIAL PRIMARY KEY,
		customer_id INTEGER REFERENCES customers(id),
		total DECIMAL(10,2) NOT NULL,
		date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status VARCHAR(20) NOT NULL DEFAULT 'Completada',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sale_details (
		id SERIAL PRIMARY KEY,
		sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price DECIMAL(10,2) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_details_sale_id ON sale_details (sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date DESC)`,
}

var seedProducts = `
	INSERT INTO products (name, description, price, stock, category) VALUES
	('Manzanas', 'Manzanas rojas frescas', 2.50, 100, 'Frutas'),
	('Bananas', 'Bananas amarillas', 1.80, 150, 'Frutas'),
	('Zanahorias', 'Zanahorias orgánicas', 1.20, 80, 'Verduras'),
	('Papas', 'Papas blancas', 0.90, 200, 'Verduras'),
	('Tomates', 'Tomates redondos', 1.50, 120, 'Verduras'),
	('Lechuga', 'Lechuga criolla', 1.00, 50, 'Verduras'),
	('Naranjas', 'Naranjas de jugo', 2.00, 100, 'Frutas'),
	('Cebollas', 'Cebollas blancas', 1.30, 150, 'Verduras'),
	('Peras', 'Peras verdes', 2.20, 80, 'Frutas'),
	('Morrones', 'Morrones rojos', 2.80, 60, 'Verduras')`

var seedCustomers = `
	INSERT INTO customers (name, email, phone, address, preferred, credit_limit) VALUES
	('Juan Pérez', 'juan@email.com', '11-1234-5678', 'Av. Siempreviva 123', true, 100000.00),
	('María García', 'maria@email.com', '11-2345-6789', 'Calle Falsa 123', false, 50000.00),
	('Carlos López', 'carlos@email.com', '11-3456-7890', 'Av. Rivadavia 1234', true, 150000.00),
	('Ana Martínez', 'ana@email.com', '11-4567-8901', 'Corrientes 4321', false, 75000.00),
	('Pedro Rodríguez', 'pedro@email.com', '11-5678-9012', 'Florida 999', true, 200000.00)`

var seedSuppliers = `
	INSERT INTO suppliers (name, email, phone, address, active, credit_limit) VALUES
	('Distribuidora Fresh', 'ventas@fresh.com', '11-1111-2222', 'Mercado Central, Puesto 123', true, 500000.00),
	('Verdulería Mayor', 'compras@mayor.com', '11-3333-4444', 'Av. Mayorista 456, CABA', true, 350000.00),
	('Rotisería El Horno', 'pedidos@elhorno.com', '11-5555-6666', 'Av. Comidas 123, CABA', false, 28000.00),
	('Comedor Universitario', 'comedor@universidad.edu', '11-7777-8888', 'Campus Universitario, CABA', true, 250000.00),
	('Cafetería El Momento', 'cafe@elmomento.com', '11-9999-0000', 'Calle Café 456, CABA', false, 15000.00)`

// Migrate creates the tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Seed inserts sample rows into every empty catalog table
func (s *Store) Seed(ctx context.Context) error {
	seeds := []struct {
		table string
		stmt  string
	}{
		{"suppliers", seedSuppliers},
		{"products", seedProducts},
		{"customers", seedCustomers},
	}

	for _, seed := range seeds {
		var count int
		if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+seed.table); err != nil {
			return fmt.Errorf("failed to count %s: %w", seed.table, err)
		}
		if count > 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, seed.stmt); err != nil {
			return fmt.Errorf("failed to seed %s: %w", seed.table, err)
		}
	}
	return nil
}
