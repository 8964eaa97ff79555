package coupon

import (
	"fmt"
	"sort"
	"strings"
)

const msgInvalid = "Invalid coupon code"

// Result is the outcome of validating a coupon code.
type Result struct {
	Valid    bool   `json:"valid"`
	Code     string `json:"code,omitempty"` // normalized, set when valid
	Discount int    `json:"discount"`
	Message  string `json:"message"`
}

// Evaluator maps coupon codes to percentage discounts.
type Evaluator struct {
	codes map[string]int
}

// NewEvaluator copies codes, normalizing keys the same way Validate does.
func NewEvaluator(codes map[string]int) *Evaluator {
	m := make(map[string]int, len(codes))
	for code, pct := range codes {
		m[normalize(code)] = pct
	}
	return &Evaluator{codes: m}
}

// Default returns the storefront's coupon table.
func Default() *Evaluator {
	return NewEvaluator(map[string]int{
		"SAVE10":  10,
		"SAVE20":  20,
		"STUDENT": 15,
		"BUGGY50": 50,
	})
}

// Validate looks code up after trimming whitespace and upper-casing it.
// Unknown codes are a normal invalid result, not an error.
func (e *Evaluator) Validate(code string) Result {
	code = normalize(code)
	pct, ok := e.codes[code]
	if !ok {
		return Result{Valid: false, Discount: 0, Message: msgInvalid}
	}
	return Result{
		Valid:    true,
		Code:     code,
		Discount: pct,
		Message:  fmt.Sprintf("Coupon applied! %d%% off", pct),
	}
}

// Codes lists the known codes in sorted order.
func (e *Evaluator) Codes() []string {
	out := make([]string, 0, len(e.codes))
	for code := range e.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
