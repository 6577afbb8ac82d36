package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryMen    Category = "Homme"
	CategoryWomen  Category = "Femme"
	CategoryUnisex Category = "Unisexe"

	// CategoryAll is the catalogue filter value meaning "no filter".
	CategoryAll = "Tous"
)

// Categories returns the selectable categories in display order.
func Categories() []Category {
	return []Category{CategoryMen, CategoryWomen, CategoryUnisex}
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Perfume is a catalogue entry. Price is expressed in FCFA and may carry
// a fractional part as stored; it is rounded whenever it enters a total.
type Perfume struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Size        string    `json:"size"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Description string    `json:"description"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
}
