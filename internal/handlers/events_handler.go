package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/notify"
)

const (
	msgExternalFailed = "Failed to load external data"
	eventBuffer       = 32
)

type sseEvent struct {
	name string
	data interface{}
}

func (h *handler) getNotification(c *gin.Context) {
	c.JSON(http.StatusOK, h.Notifier.Current())
}

func (h *handler) hideNotification(c *gin.Context) {
	h.Notifier.Hide()
	c.JSON(http.StatusOK, h.Notifier.Current())
}

func (h *handler) fetchExternal(c *gin.Context) {
	data, err := h.Fetcher.Fetch(c.Request.Context())
	if err != nil {
		h.Logger.Warn("external fetch failed", zap.String("url", h.Fetcher.URL()), zap.Error(err))
		h.Notifier.Error(msgExternalFailed)
		c.JSON(http.StatusBadGateway, gin.H{"error": "external_fetch_failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": h.Fetcher.URL(), "data": data})
}

// events streams cart, cart_open and notification changes as server-sent
// events. The current state is sent first. A client that falls behind by
// more than eventBuffer events misses the intermediate ones.
func (h *handler) events(c *gin.Context) {
	ch := make(chan sseEvent, eventBuffer)
	send := func(name string, data interface{}) {
		select {
		case ch <- sseEvent{name: name, data: data}:
		default:
		}
	}

	unsubscribe := []func(){
		h.Cart.Subscribe(func(lines []cart.Line) { send("cart", h.viewOf(lines)) }),
		h.Cart.SubscribeVisibility(func(open bool) { send("cart_open", gin.H{"open": open}) }),
		h.Notifier.Subscribe(func(n notify.Notification) { send("notification", n) }),
	}
	defer func() {
		for _, u := range unsubscribe {
			u()
		}
	}()

	send("cart", h.viewOf(h.Cart.Snapshot()))
	send("notification", h.Notifier.Current())

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev := <-ch:
			c.SSEvent(ev.name, ev.data)
			return true
		}
	})
}
