package domain

import (
	"errors"
	"strings"
)

// Category is the fixed classification of a sweet.
type Category string

const (
	CategoryChocolate   Category = "Chocolate"
	CategoryCandy       Category = "Candy"
	CategoryPastry      Category = "Pastry"
	CategoryCookie      Category = "Cookie"
	CategoryCake        Category = "Cake"
	CategoryIceCream    Category = "Ice Cream"
	CategoryTraditional Category = "Traditional"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryChocolate,
	CategoryCandy,
	CategoryPastry,
	CategoryCookie,
	CategoryCake,
	CategoryIceCream,
	CategoryTraditional,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MaxQuantity is the most units a single sweet can hold.
const MaxQuantity = 1_000_000_000

var (
	ErrSweetNotFound = errors.New("sweet not found")
	ErrOutOfStock    = errors.New("sweet is out of stock")
)

// Sweet is a single inventory item.
//
// Quantity stays within [0, MaxQuantity] and Price is always positive. The
// inventory service validates writes; purchase and restock rely on the
// store's conditional update.
type Sweet struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
}

// InStock reports whether at least one unit can be purchased.
func (s Sweet) InStock() bool {
	return s.Quantity > 0
}

// SweetInput holds the writable fields of a sweet, used by create and by
// the full-record overwrite of update.
type SweetInput struct {
	Name     string   `json:"name"     validate:"required,max=100"`
	Category Category `json:"category" validate:"sweetcategory"`
	Price    float64  `json:"price"    validate:"gte=0.01"`
	Quantity int      `json:"quantity" validate:"gte=0,lte=1000000000"`
}

// SweetFilter narrows a search. Zero-valued fields impose no constraint;
// all present fields must match.
type SweetFilter struct {
	Name     string
	Category Category
	MinPrice *float64
	MaxPrice *float64
}

// Matches reports whether s satisfies every constraint in f. Name matching
// is a case-insensitive substring match and price bounds are inclusive.
func (f SweetFilter) Matches(s Sweet) bool {
	if f.Name != "" && !containsFold(s.Name, f.Name) {
		return false
	}
	if f.Category != "" && s.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && s.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && s.Price > *f.MaxPrice {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
