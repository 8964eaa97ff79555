package checkout

import (
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/coupon"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

const (
	msgCouponRequired = "Please enter a coupon code"
	msgInvalidCoupon  = "Invalid coupon code"

	fieldCouponCode = "coupon_code"
)

// Orchestrator turns the cart plus an applied coupon into an Order.
type Orchestrator struct {
	cart     *cart.Store
	coupons  *coupon.Evaluator
	validate *validatorv10.Validate
	logger   *zap.Logger
	nowFunc  func() time.Time
	newID    func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the order timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.nowFunc = now }
}

// WithIDGenerator overrides how order ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithLogger sets the logger used for coupon and order events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator wires the checkout flow to a cart and coupon table.
func NewOrchestrator(c *cart.Store, coupons *coupon.Evaluator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:     c,
		coupons:  coupons,
		validate: validation.New(),
		logger:   zap.NewNop(),
		nowFunc:  time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ApplyCoupon validates code and, when it is valid, sets the cart discount.
// An invalid code leaves any previously applied discount in place.
func (o *Orchestrator) ApplyCoupon(code string) coupon.Result {
	if strings.TrimSpace(code) == "" {
		return coupon.Result{Valid: false, Discount: 0, Message: msgCouponRequired}
	}

	res := o.coupons.Validate(code)
	if !res.Valid {
		o.logger.Info("coupon rejected", zap.String("code", code))
		return res
	}
	if err := o.cart.SetCoupon(cart.Coupon{Code: res.Code, Percent: res.Discount}); err != nil {
		// a configured percentage outside 0-100 is unusable
		o.logger.Error("coupon discount out of range", zap.String("code", code), zap.Int("discount", res.Discount), zap.Error(err))
		return coupon.Result{Valid: false, Discount: 0, Message: msgInvalidCoupon}
	}
	o.logger.Info("coupon applied", zap.String("code", code), zap.Int("discount", res.Discount))
	return res
}

// Quote prices the current cart without changing it.
func (o *Orchestrator) Quote() cart.Totals {
	return o.cart.Totals()
}

// Finalize validates form, takes the cart contents into a new Order, clears
// the cart and its coupon, and closes the cart panel. A coupon code on the
// form replaces the one applied to the cart and must be valid. On a
// validation error or an empty cart nothing is changed.
func (o *Orchestrator) Finalize(form FormData) (Order, error) {
	form = form.trimmed()
	if err := o.validate.Struct(form); err != nil {
		return Order{}, newValidationError(err)
	}

	var formCoupon *cart.Coupon
	if form.CouponCode != "" {
		res := o.coupons.Validate(form.CouponCode)
		if !res.Valid || res.Discount < 0 || res.Discount > 100 {
			o.logger.Info("checkout coupon rejected", zap.String("code", form.CouponCode))
			return Order{}, &ValidationError{Fields: map[string]string{fieldCouponCode: msgInvalidCoupon}}
		}
		formCoupon = &cart.Coupon{Code: res.Code, Percent: res.Discount}
	}

	lines, applied := o.cart.Drain()
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	if formCoupon != nil {
		applied = *formCoupon
	}
	totals := cart.Price(lines, applied.Percent)

	order := Order{
		ID:              o.newID(),
		Customer:        form,
		Items:           lines,
		CouponCode:      applied.Code,
		Subtotal:        totals.Subtotal,
		DiscountPercent: totals.DiscountPercent,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Timestamp:       o.nowFunc().UTC(),
	}
	o.cart.Close()

	o.logger.Info("order finalized",
		zap.String("order_id", order.ID),
		zap.Int("items", order.ItemCount()),
		zap.String("subtotal", order.Subtotal.StringFixed(2)),
		zap.Int("discount_percent", order.DiscountPercent),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}
