package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Stock        int             `db:"stock" json:"stock"`
	Category     string          `db:"category" json:"category"`
	SupplierID   *int64          `db:"supplier_id" json:"supplier_id"`
	SupplierName *string         `db:"supplier_name" json:"supplier_name,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Customer represents a buyer
type Customer struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Email       string          `db:"email" json:"email"`
	Phone       string          `db:"phone" json:"phone"`
	Address     string          `db:"address" json:"address"`
	Preferred   bool            `db:"preferred" json:"preferred"`
	CreditLimit decimal.Decimal `db:"credit_limit" json:"credit_limit"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Supplier represents a product supplier
type Supplier struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Email       string          `db:"email" json:"email"`
	Phone       string          `db:"phone" json:"phone"`
	Address     string          `db:"address" json:"address"`
	Active      bool            `db:"active" json:"active"`
	CreditLimit decimal.Decimal `db:"credit_limit" json:"credit_limit"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Sale is the header of one checkout
type Sale struct {
	ID           int64           `db:"id" json:"id"`
	CustomerID   *int64          `db:"customer_id" json:"customer_id"`
	CustomerName *string         `db:"customer_name" json:"customer_name"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Date         time.Time       `db:"date" json:"date"`
	Status       string          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	Details      []SaleDetail    `db:"-" json:"details,omitempty"`
}

// SaleDetail is one line item of a sale. Price is the unit price at the time of sale.
type SaleDetail struct {
	ID          int64           `db:"id" json:"id"`
	SaleID      int64           `db:"sale_id" json:"sale_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName *string         `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// StockLevel is the locked stock row read inside a sale transaction
type StockLevel struct {
	ProductID int64           `db:"id"`
	Stock     int             `db:"stock"`
	Price     decimal.Decimal `db:"price"`
}

// Sale statuses
const (
	SaleStatusCompleted = "Completada"
)
