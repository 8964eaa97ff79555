package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// cartView is the cart as returned to clients and pushed on the event stream.
type cartView struct {
	Items     []cart.Line `json:"items"`
	ItemCount int         `json:"item_count"`
	Open      bool        `json:"open"`
	cart.Totals
}

func (h *handler) viewOf(lines []cart.Line) cartView {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return cartView{
		Items:     lines,
		ItemCount: n,
		Open:      h.Cart.IsOpen(),
		Totals:    cart.Price(lines, h.Cart.Discount()),
	}
}

func (h *handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.viewOf(h.Cart.Snapshot()))
}

func (h *handler) clearCart(c *gin.Context) {
	h.Cart.Clear()
	c.JSON(http.StatusOK, h.viewOf(h.Cart.Snapshot()))
}

func (h *handler) addItem(c *gin.Context) {
	var req validation.AddItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	p, ok := h.Catalog.ByID(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found", "product_id": req.ProductID})
		return
	}
	if err := h.Cart.Add(p); err != nil {
		h.writeCartError(c, err)
		return
	}
	h.Notifier.Success(fmt.Sprintf("%s added to cart!", p.Name))
	c.JSON(http.StatusOK, h.viewOf(h.Cart.Snapshot()))
}

func (h *handler) setQuantity(c *gin.Context) {
	id, ok := idParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	var req validation.SetQuantityRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	if err := h.Cart.SetQuantity(id, *req.Quantity); err != nil {
		h.writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.viewOf(h.Cart.Snapshot()))
}

func (h *handler) removeItem(c *gin.Context) {
	id, ok := idParam(c, "id", "invalid_product_id")
	if !ok {
		return
	}
	h.Cart.Remove(id)
	c.JSON(http.StatusOK, h.viewOf(h.Cart.Snapshot()))
}

func (h *handler) setVisibility(change func(*cart.Store)) gin.HandlerFunc {
	return func(c *gin.Context) {
		change(h.Cart)
		c.JSON(http.StatusOK, gin.H{"open": h.Cart.IsOpen()})
	}
}

func (h *handler) writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found", "detail": err.Error()})
	default:
		h.Logger.Error("cart update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_update_failed", "detail": err.Error()})
	}
}
