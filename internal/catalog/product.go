package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups products for filtering.
type Category string

const (
	CategoryAll         Category = "all"
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
)

// Categories lists the concrete categories in display order.
func Categories() []Category {
	return []Category{CategoryElectronics, CategoryClothing, CategoryFood}
}

// ParseCategory normalizes user input. Empty input means CategoryAll.
// Unknown values are returned as-is so that filtering yields nothing.
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryAll
	}
	return Category(s)
}

// Valid reports whether c is CategoryAll or one of Categories.
func (c Category) Valid() bool {
	if c == CategoryAll {
		return true
	}
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Product is an immutable catalog entry.
type Product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Emoji    string          `json:"emoji"`
}
