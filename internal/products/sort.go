package product

import (
	"cmp"
	"slices"
	"strings"

	"github.com/angelmondragon/shophub/internal/catalog"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the order of a product list.
type SortKey string

const (
	SortDefault    SortKey = "default"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
)

var validSortKeys = []SortKey{SortDefault, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNameAsc, SortNameDesc}

func (k SortKey) IsValid() bool {
	return slices.Contains(validSortKeys, k)
}

// ParseSortKey converts request input into a SortKey. Empty input is the default order.
func ParseSortKey(value string) (SortKey, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return SortDefault, nil
	}
	key := SortKey(value)
	if !key.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "sort must be one of default, price-asc, price-desc, rating-desc, name-asc, name-desc")
	}
	return key, nil
}

// Sorter orders products, comparing titles with the collation rules of a locale.
type Sorter struct {
	tag language.Tag
}

// NewSorter builds a sorter for the given BCP 47 locale; unknown locales fall back to English.
func NewSorter(locale string) Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Sorter{tag: tag}
}

// SortProducts orders products with English collation.
func SortProducts(items []catalog.Product, key SortKey) []catalog.Product {
	return Sorter{tag: language.English}.Sort(items, key)
}

// Sort returns a sorted copy of items. Equal elements keep their input order.
func (s Sorter) Sort(items []catalog.Product, key SortKey) []catalog.Product {
	out := slices.Clone(items)
	if out == nil {
		out = []catalog.Product{}
	}

	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int { return cmp.Compare(price(a), price(b)) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int { return cmp.Compare(price(b), price(a)) })
	case SortRatingDesc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int { return cmp.Compare(rate(b), rate(a)) })
	case SortNameAsc, SortNameDesc:
		// collators keep scratch buffers and are not safe to share
		col := collate.New(s.tag)
		desc := key == SortNameDesc
		slices.SortStableFunc(out, func(a, b catalog.Product) int {
			if desc {
				return col.CompareString(b.Title, a.Title)
			}
			return col.CompareString(a.Title, b.Title)
		})
	}
	return out
}
