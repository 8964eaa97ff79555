package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront/internal/catalog"
)

func (h *handler) listProducts(c *gin.Context) {
	category := catalog.ParseCategory(c.Query("category"))
	query := strings.TrimSpace(c.Query("q"))

	latency := h.CatalogLatency
	if query != "" {
		latency = h.SearchLatency
	}
	if err := pause(c.Request.Context(), latency); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request_cancelled", "detail": err.Error()})
		return
	}

	var products []catalog.Product
	if query != "" {
		products = h.Catalog.Search(query, category)
	} else {
		products = h.Catalog.List(category)
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *handler) getProduct(c *gin.Context) {
	id, ok := idParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	p, found := h.Catalog.ByID(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found", "product_id": id})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": catalog.Categories()})
}

func (h *handler) listCoupons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"codes": h.Coupons.Codes()})
}
