package api

import (
	"net/http"

	"inventory-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listSales(c *gin.Context) {
	sales, err := h.svc.Sales.ListSales(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, sales)
}

// createSale runs the sale transaction. An Idempotency-Key header makes
// retries of the same checkout return the sale created first.
func (h *Handler) createSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	sale, err := h.svc.Sales.CreateSale(c.Request.Context(), &req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, sale)
}

func (h *Handler) getSale(c *gin.Context) {
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}

	sale, err := h.svc.Sales.GetSale(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, sale)
}

func (h *Handler) deleteSale(c *gin.Context) {
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}

	if err := h.svc.Sales.DeleteSale(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}
