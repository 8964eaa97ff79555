package validation

// AddItemRequest is the payload for POST /cart/items.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

// SetQuantityRequest is the payload for PUT /cart/items/:id. A quantity of
// zero or less removes the line, so only presence is required.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// ApplyCouponRequest is the payload for POST /coupons/apply. Blank codes are
// answered by the checkout flow, not rejected here.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}
