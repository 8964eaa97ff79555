package cart

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is a priced cart. Total always equals Subtotal minus Discount.
type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent int             `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
}

// Price computes totals for lines with percent taken off the subtotal.
func Price(lines []Line, percent int) Totals {
	subtotal := sum(lines)
	discount := subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: percent,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
	}
}

func sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
