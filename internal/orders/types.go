package orders

import (
	"time"

	"github.com/imrishuroy/go-storefront/internal/checkout"
)

// Order statuses
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// LineItem is one cart line as recorded with the order. Prices are stored
// as decimal strings so totals round-trip exactly.
type LineItem struct {
	ProductID int    `dynamodbav:"product_id" json:"product_id"`
	Name      string `dynamodbav:"name" json:"name"`
	UnitPrice string `dynamodbav:"unit_price" json:"unit_price"`
	Quantity  int    `dynamodbav:"quantity" json:"quantity"`
}

// Order represents the item stored in the Orders DynamoDB table.
type Order struct {
	OrderID         string     `dynamodbav:"order_id" json:"order_id"` // PK
	IdempotencyKey  string     `dynamodbav:"idempotency_key,omitempty" json:"idempotency_key,omitempty"`
	CustomerName    string     `dynamodbav:"customer_name" json:"customer_name"`
	CustomerEmail   string     `dynamodbav:"customer_email" json:"customer_email"`
	CardLast4       string     `dynamodbav:"card_last4,omitempty" json:"card_last4,omitempty"`
	CouponCode      string     `dynamodbav:"coupon_code,omitempty" json:"coupon_code,omitempty"`
	Status          string     `dynamodbav:"status" json:"status"` // PENDING | PROCESSING | COMPLETED | FAILED
	Items           []LineItem `dynamodbav:"items" json:"items"`
	Subtotal        string     `dynamodbav:"subtotal" json:"subtotal"`
	DiscountPercent int        `dynamodbav:"discount_percent" json:"discount_percent"`
	Discount        string     `dynamodbav:"discount" json:"discount"`
	Total           string     `dynamodbav:"total" json:"total"`
	PlacedAt        time.Time  `dynamodbav:"placed_at" json:"placed_at"`
	CreatedAt       time.Time  `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `dynamodbav:"updated_at" json:"updated_at"`
	Attempts        int        `dynamodbav:"attempts,omitempty" json:"attempts,omitempty"`
}

// FromCheckout converts a finalized checkout into a PENDING order record.
// Only the last four digits of the card reference are kept.
func FromCheckout(o checkout.Order, idempotencyKey string) Order {
	items := make([]LineItem, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, LineItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
		})
	}
	return Order{
		OrderID:         o.ID,
		IdempotencyKey:  idempotencyKey,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CardLast4:       last4(o.Customer.CardNumber),
		CouponCode:      o.CouponCode,
		Status:          StatusPending,
		Items:           items,
		Subtotal:        o.Subtotal.StringFixed(2),
		DiscountPercent: o.DiscountPercent,
		Discount:        o.Discount.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		PlacedAt:        o.Timestamp,
	}
}

func last4(card string) string {
	digits := make([]rune, 0, len(card))
	for _, r := range card {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}
