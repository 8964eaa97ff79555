package checkout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/cart"
)

// FormData is what the shopper submits at checkout.
type FormData struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	CardNumber string `json:"card_number" validate:"required"` // payment reference, never charged
	CouponCode string `json:"coupon_code,omitempty"` // applied at finalize when set
}

func (f FormData) trimmed() FormData {
	return FormData{
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		CardNumber: strings.TrimSpace(f.CardNumber),
		CouponCode: strings.TrimSpace(f.CouponCode),
	}
}

// Order is the finalized record of a checkout. It is a value; the cart it
// was built from has already been cleared.
type Order struct {
	ID              string          `json:"order_id"`
	Customer        FormData        `json:"customer"`
	Items           []cart.Line     `json:"items"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent int             `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Timestamp       time.Time       `json:"timestamp"`
}

// ItemCount is the number of units in the order.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}
