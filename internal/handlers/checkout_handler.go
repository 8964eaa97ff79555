package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
	"github.com/imrishuroy/go-storefront/internal/orders"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

const (
	msgOrderPlaced    = "Order placed successfully!"
	msgRequiredFields = "Please fill in all required fields"
	msgEmptyCart      = "Your cart is empty"
	msgNotRecorded    = "Order placed but could not be saved"
)

func (h *handler) applyCoupon(c *gin.Context) {
	var req validation.ApplyCouponRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return
	}

	res := h.Checkout.ApplyCoupon(req.Code)
	if !res.Valid {
		h.Notifier.Error(res.Message)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_coupon", "detail": res.Message, "coupon": res})
		return
	}
	h.Notifier.Success(res.Message)
	c.JSON(http.StatusOK, gin.H{"coupon": res, "totals": h.Checkout.Quote()})
}

func (h *handler) quote(c *gin.Context) {
	c.JSON(http.StatusOK, h.Checkout.Quote())
}

// placeOrder finalizes the cart. With order recording enabled, a repeated
// Idempotency-Key replays the stored response instead of placing a second
// order, and a concurrent one gets 202; without a key the order id is used.
func (h *handler) placeOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var form checkout.FormData
	if err := validation.BindJSON(c, &form); err != nil {
		return
	}

	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if h.Recorder != nil && key != "" {
		release, ok := h.inflight.claim(key)
		if !ok {
			c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "idempotency_key": key})
			return
		}
		defer release()
		if h.replay(c, key) {
			return
		}
	}

	order, err := h.Checkout.Finalize(form)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	body, err := json.Marshal(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode_order_failed", "detail": err.Error()})
		return
	}

	if h.Recorder != nil {
		if key == "" {
			key = order.ID
		}
		if _, err := h.Recorder.Record(ctx, key, c.GetHeader("X-Request-Id"), order, body, http.StatusCreated); err != nil {
			h.Logger.Error("record order", zap.String("order_id", order.ID), zap.Error(err))
			h.Notifier.Error(msgNotRecorded)
			code := "order_not_recorded"
			if errors.Is(err, orders.ErrDuplicateKey) {
				code = "duplicate_request"
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": code, "detail": err.Error(), "order": order})
			return
		}
		c.Header("Location", fmt.Sprintf("/orders/%s", order.ID))
	}

	h.Notifier.Success(msgOrderPlaced)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// replay answers from an existing idempotency record. It reports false when
// the key is unused and the checkout should proceed.
func (h *handler) replay(c *gin.Context, key string) bool {
	rec, err := h.Recorder.Replay(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return true
	}
	if rec == nil {
		return false
	}

	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody == "" {
			c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
			return true
		}
		status := rec.ResponseStatus
		if status == 0 {
			status = http.StatusOK
		}
		c.Data(status, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
	case idempotency.StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "order_id": rec.OrderID, "detail": rec.Note})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
	return true
}

func (h *handler) writeCheckoutError(c *gin.Context, err error) {
	var ve *checkout.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := msgRequiredFields
		if couponMsg, ok := ve.Fields["coupon_code"]; ok && len(ve.Fields) == 1 {
			msg = couponMsg
		}
		h.Notifier.Error(msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": ve.Fields})
	case errors.Is(err, checkout.ErrEmptyCart):
		h.Notifier.Error(msgEmptyCart)
		c.JSON(http.StatusConflict, gin.H{"error": "empty_cart", "detail": err.Error()})
	default:
		h.Logger.Error("checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed", "detail": err.Error()})
	}
}

func (h *handler) getOrder(c *gin.Context) {
	if h.Recorder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_recording_disabled"})
		return
	}
	o, err := h.Recorder.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed", "detail": err.Error()})
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "order_id": c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, o)
}
