package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-storefront/internal/validation"
)

// ErrEmptyCart is returned by Finalize when there is nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError lists the checkout fields that failed validation,
// keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("checkout validation failed: %s", strings.Join(keys, ", "))
}

func newValidationError(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate checkout form: %w", err)
	}
	return &ValidationError{Fields: validation.FieldErrors(ve)}
}
