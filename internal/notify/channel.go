package notify

import (
	"sync"
	"time"

	"github.com/imrishuroy/go-storefront/internal/pubsub"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is the single live status message.
// ID increases with every Notify call and identifies the instance.
type Notification struct {
	ID       uint64   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Visible  bool     `json:"visible"`
}

// Delays controls how long each severity stays visible.
type Delays struct {
	Success time.Duration
	Info    time.Duration
	Error   time.Duration
}

// DefaultDelays hides success and info after 2s and errors after 3s.
var DefaultDelays = Delays{
	Success: 2 * time.Second,
	Info:    2 * time.Second,
	Error:   3 * time.Second,
}

// Channel holds exactly one notification at a time. A new notification
// replaces the current one; each auto-hide is bound to the instance that
// scheduled it, so a stale timer never hides a newer message.
type Channel struct {
	delays Delays

	mu      sync.Mutex
	current Notification
	timer   *time.Timer
	closed  bool

	topic pubsub.Topic[Notification]
}

// Option configures a Channel.
type Option func(*Channel)

// WithDelays overrides the auto-hide delays.
func WithDelays(d Delays) Option {
	return func(c *Channel) { c.delays = d }
}

// NewChannel returns a channel with nothing visible.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		delays:  DefaultDelays,
		current: Notification{Severity: SeveritySuccess},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify shows message with severity, replacing whatever was visible.
func (c *Channel) Notify(message string, severity Severity) Notification {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.current = Notification{
		ID:       c.current.ID + 1,
		Message:  message,
		Severity: severity,
		Visible:  true,
	}
	n := c.current
	if !c.closed {
		c.timer = time.AfterFunc(c.delayFor(severity), func() { c.expire(n.ID) })
	}
	c.mu.Unlock()

	c.topic.Publish(n)
	return n
}

// Success shows a success notification.
func (c *Channel) Success(message string) Notification { return c.Notify(message, SeveritySuccess) }

// Error shows an error notification, which stays up longer.
func (c *Channel) Error(message string) Notification { return c.Notify(message, SeverityError) }

// Info shows an informational notification.
func (c *Channel) Info(message string) Notification { return c.Notify(message, SeverityInfo) }

// Hide clears visibility of the current notification immediately.
func (c *Channel) Hide() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	n, changed := c.hideLocked()
	c.mu.Unlock()

	if changed {
		c.topic.Publish(n)
	}
}

// Current returns the latest notification.
func (c *Channel) Current() Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers fn for notification changes.
func (c *Channel) Subscribe(fn func(Notification)) (unsubscribe func()) {
	return c.topic.Subscribe(fn)
}

// Close stops any pending auto-hide. Later notifications stay visible until
// replaced or hidden explicitly.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) expire(id uint64) {
	c.mu.Lock()
	if c.current.ID != id {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	n, changed := c.hideLocked()
	c.mu.Unlock()

	if changed {
		c.topic.Publish(n)
	}
}

func (c *Channel) hideLocked() (Notification, bool) {
	if !c.current.Visible {
		return c.current, false
	}
	c.current.Visible = false
	return c.current, true
}

func (c *Channel) delayFor(s Severity) time.Duration {
	switch s {
	case SeverityError:
		return c.delays.Error
	case SeverityInfo:
		return c.delays.Info
	default:
		return c.delays.Success
	}
}
