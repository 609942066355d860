package product

import (
	"math"
	"strings"

	"github.com/angelmondragon/shophub/internal/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PriceRange bounds a price filter. A nil bound is unconstrained.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether price lies inside the inclusive range.
func (r PriceRange) Contains(price float64) bool {
	if r.Min != nil && price < *r.Min {
		return false
	}
	if r.Max != nil && price > *r.Max {
		return false
	}
	return true
}

// FilterCriteria is the active set of product filters.
type FilterCriteria struct {
	Categories  []string    `json:"categories"`
	PriceRange  *PriceRange `json:"price_range"`
	Rating      *float64    `json:"rating"`
	SearchQuery string      `json:"search_query"`
}

// IsActive reports whether any filter is set.
func (c FilterCriteria) IsActive() bool {
	return len(c.Categories) > 0 || c.PriceRange != nil || c.Rating != nil || c.SearchQuery != ""
}

// FilterProducts returns the products matching every active criterion.
// The input slice and its elements are never modified.
func FilterProducts(items []catalog.Product, c FilterCriteria) []catalog.Product {
	fold := cases.Fold()
	lower := cases.Lower(language.Und)

	var categories map[string]struct{}
	if len(c.Categories) > 0 {
		categories = make(map[string]struct{}, len(c.Categories))
		for _, cat := range c.Categories {
			categories[fold.String(cat)] = struct{}{}
		}
	}
	query := ""
	if c.SearchQuery != "" {
		query = lower.String(c.SearchQuery)
	}
	// a zero threshold is the same as no rating filter
	minRating := 0.0
	if c.Rating != nil && *c.Rating > 0 {
		minRating = *c.Rating
	}

	out := make([]catalog.Product, 0, len(items))
	for _, p := range items {
		if categories != nil {
			if _, ok := categories[fold.String(p.Category)]; !ok {
				continue
			}
		}
		if c.PriceRange != nil && !c.PriceRange.Contains(price(p)) {
			continue
		}
		if minRating > 0 && rate(p) < minRating {
			continue
		}
		if query != "" && !matchesQuery(lower, p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(lower cases.Caser, p catalog.Product, query string) bool {
	return strings.Contains(lower.String(p.Title), query) ||
		strings.Contains(lower.String(p.Description), query) ||
		strings.Contains(lower.String(p.Category), query)
}

// price and rate degrade malformed numbers to 0.
func price(p catalog.Product) float64 {
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return 0
	}
	return p.Price
}

func rate(p catalog.Product) float64 {
	r := p.Rate()
	if math.IsNaN(r) {
		return 0
	}
	return r
}
