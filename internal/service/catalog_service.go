package service

import (
	"context"
	"errors"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// catalogError maps store errors for entity onto application errors
func catalogError(entity string, id int64, op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(entity, id)
	case errors.Is(err, store.ErrReferenced):
		return apperr.Conflict(entity+" is referenced by other records", err)
	default:
		return apperr.Internal("failed to "+op+" "+entity, err)
	}
}

// ProductService manages the product catalog
type ProductService struct {
	store  *store.Store
	stock  *StockService
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store *store.Store, stock *StockService) *ProductService {
	return &ProductService{
		store:  store,
		stock:  stock,
		logger: util.GetLogger(),
	}
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperr.Validation("name is required")
	}
	if p.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if p.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	return nil
}

// supplierError reports a product write whose supplier_id points nowhere
func supplierError(p *models.Product, op string, err error) error {
	if errors.Is(err, store.ErrReferenced) && p.SupplierID != nil {
		return apperr.NotFound("supplier", *p.SupplierID)
	}
	return catalogError("product", p.ID, op, err)
}

// ListProducts lists products matching search and category
func (ps *ProductService) ListProducts(ctx context.Context, search, category string) ([]models.Product, error) {
	products, err := ps.store.ListProducts(ctx, strings.TrimSpace(search), category)
	if err != nil {
		return nil, apperr.Internal("failed to list products", err)
	}
	return products, nil
}

// GetProduct retrieves a product
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := ps.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, catalogError("product", id, "get", err)
	}
	return product, nil
}

// CreateProduct validates and stores a new product
func (ps *ProductService) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := ps.store.CreateProduct(ctx, p); err != nil {
		return nil, supplierError(p, "create", err)
	}

	ps.logger.Info("Product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	ps.stock.cacheStock(ctx, p.ID, p.Stock)
	return p, nil
}

// UpdateProduct overwrites a product and refreshes its cached stock
func (ps *ProductService) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := ps.store.UpdateProduct(ctx, p); err != nil {
		return nil, supplierError(p, "update", err)
	}

	ps.stock.cacheStock(ctx, p.ID, p.Stock)
	return p, nil
}

// DeleteProduct removes a product. Products referenced by sales cannot be deleted.
func (ps *ProductService) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := ps.store.DeleteProduct(ctx, id)
	if err != nil {
		return nil, catalogError("product", id, "delete", err)
	}

	ps.stock.Invalidate(ctx, id)
	ps.logger.Info("Product deleted", zap.Int64("product_id", id))
	return product, nil
}

// CustomerService manages customers
type CustomerService struct {
	store *store.Store
}

// NewCustomerService creates a new customer service
func NewCustomerService(store *store.Store) *CustomerService {
	return &CustomerService{store: store}
}

func validateCustomer(c *models.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.Validation("name is required")
	}
	if c.CreditLimit.IsNegative() {
		return apperr.Validation("credit_limit must not be negative")
	}
	return nil
}

func (cs *CustomerService) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := cs.store.ListCustomers(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperr.Internal("failed to list customers", err)
	}
	return customers, nil
}

func (cs *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := cs.store.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, catalogError("customer", id, "get", err)
	}
	return customer, nil
}

func (cs *CustomerService) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	if err := cs.store.CreateCustomer(ctx, c); err != nil {
		return nil, catalogError("customer", c.ID, "create", err)
	}
	return c, nil
}

func (cs *CustomerService) UpdateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	if err := cs.store.UpdateCustomer(ctx, c); err != nil {
		return nil, catalogError("customer", c.ID, "update", err)
	}
	return c, nil
}

// DeleteCustomer removes a customer. Customers with sales cannot be deleted.
func (cs *CustomerService) DeleteCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := cs.store.DeleteCustomer(ctx, id)
	if err != nil {
		return nil, catalogError("customer", id, "delete", err)
	}
	return customer, nil
}

// SupplierService manages suppliers
type SupplierService struct {
	store *store.Store
}

// NewSupplierService creates a new supplier service
func NewSupplierService(store *store.Store) *SupplierService {
	return &SupplierService{store: store}
}

func validateSupplier(s *models.Supplier) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return apperr.Validation("name is required")
	}
	if s.CreditLimit.IsNegative() {
		return apperr.Validation("credit_limit must not be negative")
	}
	return nil
}

func (ss *SupplierService) ListSuppliers(ctx context.Context, search string) ([]models.Supplier, error) {
	suppliers, err := ss.store.ListSuppliers(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperr.Internal("failed to list suppliers", err)
	}
	return suppliers, nil
}

func (ss *SupplierService) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := ss.store.GetSupplierByID(ctx, id)
	if err != nil {
		return nil, catalogError("supplier", id, "get", err)
	}
	return supplier, nil
}

func (ss *SupplierService) CreateSupplier(ctx context.Context, s *models.Supplier) (*models.Supplier, error) {
	if err := validateSupplier(s); err != nil {
		return nil, err
	}
	if err := ss.store.CreateSupplier(ctx, s); err != nil {
		return nil, catalogError("supplier", s.ID, "create", err)
	}
	return s, nil
}

func (ss *SupplierService) UpdateSupplier(ctx context.Context, s *models.Supplier) (*models.Supplier, error) {
	if err := validateSupplier(s); err != nil {
		return nil, err
	}
	if err := ss.store.UpdateSupplier(ctx, s); err != nil {
		return nil, catalogError("supplier", s.ID, "update", err)
	}
	return s, nil
}

// DeleteSupplier removes a supplier; its products keep existing without one
func (ss *SupplierService) DeleteSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := ss.store.DeleteSupplier(ctx, id)
	if err != nil {
		return nil, catalogError("supplier", id, "delete", err)
	}
	return supplier, nil
}
