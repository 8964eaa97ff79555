package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/coupon"
	"github.com/imrishuroy/go-storefront/internal/external"
	"github.com/imrishuroy/go-storefront/internal/notify"
	"github.com/imrishuroy/go-storefront/internal/orders"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// HandlerConfig groups dependencies for the storefront routes.
type HandlerConfig struct {
	Catalog  *catalog.Store
	Cart     *cart.Store
	Coupons  *coupon.Evaluator
	Checkout *checkout.Orchestrator
	Notifier *notify.Channel
	Fetcher  *external.Fetcher
	Recorder *orders.Recorder // nil disables order recording
	Logger   *zap.Logger

	// simulated backend latency for catalog reads
	CatalogLatency time.Duration
	SearchLatency  time.Duration
}

type handler struct {
	HandlerConfig
	validate *validatorv10.Validate
	inflight keyClaims
}

// RegisterRoutes registers the catalog, cart, checkout and event routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	h := &handler{HandlerConfig: cfg, validate: validation.New(), inflight: keyClaims{keys: map[string]struct{}{}}}

	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)
	r.GET("/categories", h.listCategories)

	r.GET("/cart", h.getCart)
	r.DELETE("/cart", h.clearCart)
	r.POST("/cart/items", h.addItem)
	r.PUT("/cart/items/:id", h.setQuantity)
	r.DELETE("/cart/items/:id", h.removeItem)
	r.POST("/cart/open", h.setVisibility((*cart.Store).Open))
	r.POST("/cart/close", h.setVisibility((*cart.Store).Close))
	r.POST("/cart/toggle", h.setVisibility((*cart.Store).Toggle))

	r.GET("/coupons", h.listCoupons)
	r.POST("/coupons/apply", h.applyCoupon)
	r.GET("/checkout/quote", h.quote)
	r.POST("/checkout", h.placeOrder)
	r.GET("/orders/:id", h.getOrder)

	r.GET("/notification", h.getNotification)
	r.DELETE("/notification", h.hideNotification)
	r.GET("/external", h.fetchExternal)
	r.GET("/events", h.events)
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// idParam parses a positive integer path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name, errCode string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errCode, "detail": c.Param(name)})
		return 0, false
	}
	return id, true
}

// keyClaims tracks the Idempotency-Keys whose checkout is running in this
// process, from before the replay lookup until the order is recorded.
type keyClaims struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (k *keyClaims) claim(key string) (release func(), ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, busy := k.keys[key]; busy {
		return nil, false
	}
	k.keys[key] = struct{}{}
	return func() {
		k.mu.Lock()
		delete(k.keys, key)
		k.mu.Unlock()
	}, true
}
