package api

import (
	"net/http"

	"inventory-service/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.svc.Products.ListProducts(c.Request.Context(), c.Query("search"), c.Query("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	product, err := h.svc.Products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	created, err := h.svc.Products.CreateProduct(c.Request.Context(), &p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p.ID = id

	updated, err := h.svc.Products.UpdateProduct(c.Request.Context(), &p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	deleted, err := h.svc.Products.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, deleted)
}

// getProductStock serves stock from the cache, falling back to the database
func (h *Handler) getProductStock(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	stock, err := h.svc.Stock.GetStock(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"product_id": id, "stock": stock})
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.svc.Customers.ListCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, customers)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.svc.Customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, customer)
}

func (h *Handler) createCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	created, err := h.svc.Customers.CreateCustomer(c.Request.Context(), &customer)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}

	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	customer.ID = id

	updated, err := h.svc.Customers.UpdateCustomer(c.Request.Context(), &customer)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}

	deleted, err := h.svc.Customers.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, deleted)
}

func (h *Handler) listSuppliers(c *gin.Context) {
	suppliers, err := h.svc.Suppliers.ListSuppliers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(c *gin.Context) {
	id, ok := pathID(c, "supplier")
	if !ok {
		return
	}

	supplier, err := h.svc.Suppliers.GetSupplier(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, supplier)
}

func (h *Handler) createSupplier(c *gin.Context) {
	var supplier models.Supplier
	if err := c.ShouldBindJSON(&supplier); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	created, err := h.svc.Suppliers.CreateSupplier(c.Request.Context(), &supplier)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (h *Handler) updateSupplier(c *gin.Context) {
	id, ok := pathID(c, "supplier")
	if !ok {
		return
	}

	var supplier models.Supplier
	if err := c.ShouldBindJSON(&supplier); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	supplier.ID = id

	updated, err := h.svc.Suppliers.UpdateSupplier(c.Request.Context(), &supplier)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *Handler) deleteSupplier(c *gin.Context) {
	id, ok := pathID(c, "supplier")
	if !ok {
		return
	}

	deleted, err := h.svc.Suppliers.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, deleted)
}
