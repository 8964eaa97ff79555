package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Store answers queries over a fixed product list. It is never mutated after
// construction, so it is safe for concurrent use.
type Store struct {
	products []Product
	byID     map[int]int // product id -> index in products
}

// NewStore builds a catalog from products in the given order.
// Later duplicates of an id are ignored.
func NewStore(products ...Product) *Store {
	s := &Store{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s
}

// Default returns the twelve-product storefront catalog.
func Default() *Store {
	return NewStore(
		Product{ID: 1, Name: "Wireless Headphones", Category: CategoryElectronics, Price: price("79.99"), Emoji: "🎧"},
		Product{ID: 2, Name: "Smart Watch", Category: CategoryElectronics, Price: price("199.99"), Emoji: "⌚"},
		Product{ID: 3, Name: "Laptop Stand", Category: CategoryElectronics, Price: price("45.99"), Emoji: "💻"},
		Product{ID: 4, Name: "USB-C Hub", Category: CategoryElectronics, Price: price("34.99"), Emoji: "🔌"},
		Product{ID: 5, Name: "Winter Jacket", Category: CategoryClothing, Price: price("89.99"), Emoji: "🧥"},
		Product{ID: 6, Name: "Running Shoes", Category: CategoryClothing, Price: price("120.00"), Emoji: "👟"},
		Product{ID: 7, Name: "Sunglasses", Category: CategoryClothing, Price: price("55.00"), Emoji: "🕶️"},
		Product{ID: 8, Name: "Backpack", Category: CategoryClothing, Price: price("65.99"), Emoji: "🎒"},
		Product{ID: 9, Name: "Organic Coffee", Category: CategoryFood, Price: price("15.99"), Emoji: "☕"},
		Product{ID: 10, Name: "Dark Chocolate", Category: CategoryFood, Price: price("8.99"), Emoji: "🍫"},
		Product{ID: 11, Name: "Mixed Nuts", Category: CategoryFood, Price: price("12.50"), Emoji: "🥜"},
		Product{ID: 12, Name: "Green Tea Set", Category: CategoryFood, Price: price("24.99"), Emoji: "🍵"},
	)
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// List returns the products in category, in catalog order.
// CategoryAll (or "") returns every product; an unknown category returns none.
func (s *Store) List(category Category) []Product {
	if category == "" || category == CategoryAll {
		out := make([]Product, len(s.products))
		copy(out, s.products)
		return out
	}
	out := []Product{}
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Search matches query case-insensitively as a substring of the product name,
// within category. A blank query is the same as List(category).
func (s *Store) Search(query string, category Category) []Product {
	candidates := s.List(category)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return candidates
	}
	out := []Product{}
	for _, p := range candidates {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks a product up by identifier.
func (s *Store) ByID(id int) (Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Len is the number of products in the catalog.
func (s *Store) Len() int { return len(s.products) }
