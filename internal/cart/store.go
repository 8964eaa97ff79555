package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/pubsub"
)

var (
	ErrUnknownProduct  = errors.New("product not in catalog")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
)

// ProductLookup resolves catalog products. *catalog.Store satisfies it.
type ProductLookup interface {
	ByID(id int) (catalog.Product, bool)
}

// Line is one product in the cart with the quantity to buy.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Coupon is the code accepted for the cart and the percentage it takes off.
// Code is empty when the discount was set directly.
type Coupon struct {
	Code    string `json:"code,omitempty"`
	Percent int    `json:"percent"`
}

// Store holds the shopper's cart lines, the applied coupon and the
// open/closed state of the cart panel. Every mutation publishes the new
// state to subscribers before it returns.
type Store struct {
	lookup ProductLookup

	mu     sync.Mutex
	lines  []Line
	coupon Coupon
	open   bool

	linesTopic pubsub.Topic[[]Line]
	openTopic  pubsub.Topic[bool]
}

// NewStore returns an empty, closed cart bound to a catalog.
func NewStore(lookup ProductLookup) *Store {
	return &Store{lookup: lookup}
}

// Add puts one more unit of p into the cart.
func (s *Store) Add(p catalog.Product) error {
	// The catalog copy is stored so lines never carry caller-modified data.
	id := p.ID
	p, ok := s.lookup.ByID(id)
	if !ok {
		return fmt.Errorf("add product %d: %w", id, ErrUnknownProduct)
	}

	s.mu.Lock()
	if i := s.indexOf(p.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, Line{Product: p, Quantity: 1})
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.linesTopic.Publish(snap)
	return nil
}

// Remove deletes the line for productID. Removing an absent product is a no-op.
func (s *Store) Remove(productID int) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.linesTopic.Publish(snap)
}

// SetQuantity sets the quantity for productID, inserting the line if needed.
// A quantity of zero or less removes the line.
func (s *Store) SetQuantity(productID, quantity int) error {
	if quantity <= 0 {
		s.Remove(productID)
		return nil
	}
	p, ok := s.lookup.ByID(productID)
	if !ok {
		return fmt.Errorf("set quantity for product %d: %w", productID, ErrUnknownProduct)
	}

	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = quantity
	} else {
		s.lines = append(s.lines, Line{Product: p, Quantity: quantity})
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.linesTopic.Publish(snap)
	return nil
}

// Snapshot returns a copy of the cart lines in insertion order.
func (s *Store) Snapshot() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total is the sum of price × quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// ItemCount is the number of units across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// SetDiscount records the percentage to take off the total without a code.
func (s *Store) SetDiscount(percent int) error {
	return s.SetCoupon(Coupon{Percent: percent})
}

// SetCoupon replaces the applied coupon. Subscribers receive the unchanged
// lines so they can re-price them.
func (s *Store) SetCoupon(c Coupon) error {
	if c.Percent < 0 || c.Percent > 100 {
		return fmt.Errorf("set discount %d: %w", c.Percent, ErrInvalidDiscount)
	}
	s.mu.Lock()
	s.coupon = c
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.linesTopic.Publish(snap)
	return nil
}

// Discount is the applied discount percentage.
func (s *Store) Discount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon.Percent
}

// Coupon is the applied coupon.
func (s *Store) Coupon() Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon
}

// Totals returns the priced cart, read under one lock.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Price(s.lines, s.coupon.Percent)
}

// FinalTotal is the total after the applied discount.
func (s *Store) FinalTotal() decimal.Decimal {
	return s.Totals().Total
}

// Drain atomically takes the lines and coupon out of the cart, leaving it
// empty. An empty cart is left untouched and nothing is published.
func (s *Store) Drain() ([]Line, Coupon) {
	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return []Line{}, Coupon{}
	}
	lines, c := s.lines, s.coupon
	s.lines = nil
	s.coupon = Coupon{}
	s.mu.Unlock()

	s.linesTopic.Publish([]Line{})
	return lines, c
}

// Clear empties the cart and drops the coupon.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.coupon = Coupon{}
	s.mu.Unlock()

	s.linesTopic.Publish([]Line{})
}

// Subscribe registers fn for cart line updates.
func (s *Store) Subscribe(fn func([]Line)) (unsubscribe func()) {
	return s.linesTopic.Subscribe(fn)
}

// Open shows the cart panel.
func (s *Store) Open() { s.setOpen(func(bool) bool { return true }) }

// Close hides the cart panel.
func (s *Store) Close() { s.setOpen(func(bool) bool { return false }) }

// Toggle flips the cart panel visibility.
func (s *Store) Toggle() { s.setOpen(func(cur bool) bool { return !cur }) }

// IsOpen reports whether the cart panel is visible.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// SubscribeVisibility registers fn for cart panel open/close changes.
func (s *Store) SubscribeVisibility(fn func(bool)) (unsubscribe func()) {
	return s.openTopic.Subscribe(fn)
}

func (s *Store) setOpen(next func(bool) bool) {
	s.mu.Lock()
	s.open = next(s.open)
	open := s.open
	s.mu.Unlock()

	s.openTopic.Publish(open)
}

func (s *Store) indexOf(productID int) int {
	for i, l := range s.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) totalLocked() decimal.Decimal {
	return sum(s.lines)
}
