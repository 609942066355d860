package product

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/shophub/internal/catalog"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"golang.org/x/text/cases"
)

// View is a snapshot of a browse session as presented to the client.
type View struct {
	Loading          bool              `json:"loading"`
	Category         string            `json:"category,omitempty"`
	Items            []catalog.Product `json:"items"`
	DisplayCount     int               `json:"display_count"`
	Total            int               `json:"total"`
	HasMore          bool              `json:"has_more"`
	Filters          FilterCriteria    `json:"filters"`
	Sort             SortKey           `json:"sort"`
	HasActiveFilters bool              `json:"has_active_filters"`
}

// Session holds one shopper's filters, sort order, window and the dataset they apply to.
type Session struct {
	sorter Sorter
	window *Window
	gen    catalog.Generation

	mu       sync.Mutex
	criteria FilterCriteria
	sortKey  SortKey
	category string
	products []catalog.Product
	loaded   bool
	loading  bool
	lastUsed time.Time
}

func NewSession(pageSize int, sorter Sorter) *Session {
	return &Session{
		sorter:   sorter,
		window:   NewWindow(pageSize),
		sortKey:  SortDefault,
		lastUsed: time.Now(),
	}
}

// Load replaces the session dataset with the products of category, or the whole
// catalog when category is empty. It reports false when a newer Load was issued
// before this one finished; the stale response is dropped.
func (s *Session) Load(ctx context.Context, src catalog.Source, category string) (bool, error) {
	category = strings.TrimSpace(category)
	tag := s.gen.Next()

	s.mu.Lock()
	s.loading = true
	s.category = category
	s.mu.Unlock()

	var (
		items []catalog.Product
		err   error
	)
	if category == "" {
		items, err = src.FetchAllProducts(ctx)
	} else {
		items, err = src.FetchProductsByCategory(ctx, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gen.IsCurrent(tag) {
		return false, nil
	}
	s.loading = false
	if err != nil {
		s.products = nil
		s.loaded = false
		return true, err
	}
	s.products = items
	s.loaded = true
	s.window.Reset()
	return true, nil
}

// Loaded reports whether a dataset is in place or being fetched.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded || s.loading
}

// ToggleCategory adds category to the filter set, or removes it when already present.
func (s *Session) ToggleCategory(category string) {
	fold := cases.Fold()
	key := fold.String(category)
	s.update(func(c *FilterCriteria) {
		idx := slices.IndexFunc(c.Categories, func(existing string) bool { return fold.String(existing) == key })
		if idx >= 0 {
			c.Categories = slices.Delete(slices.Clone(c.Categories), idx, idx+1)
			return
		}
		c.Categories = append(slices.Clone(c.Categories), category)
	})
}

// SetPriceRange sets or clears (nil) the price filter.
func (s *Session) SetPriceRange(r *PriceRange) error {
	if r != nil {
		if (r.Min != nil && *r.Min < 0) || (r.Max != nil && *r.Max < 0) {
			return pkgerrors.New(pkgerrors.CodeValidation, "price bounds must not be negative")
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return pkgerrors.New(pkgerrors.CodeValidation, "min price must not exceed max price")
		}
	}
	s.update(func(c *FilterCriteria) { c.PriceRange = r })
	return nil
}

// SetRating sets or clears (nil) the minimum rating.
func (s *Session) SetRating(rating *float64) error {
	if rating != nil && (*rating < 0 || *rating > 5) {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	s.update(func(c *FilterCriteria) { c.Rating = rating })
	return nil
}

func (s *Session) SetSearchQuery(query string) {
	s.update(func(c *FilterCriteria) { c.SearchQuery = query })
}

func (s *Session) SetSort(key SortKey) {
	s.mu.Lock()
	s.sortKey = key
	s.mu.Unlock()
	s.window.Reset()
}

// ClearFilters drops every filter and returns to the default order.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	s.criteria = FilterCriteria{}
	s.sortKey = SortDefault
	s.mu.Unlock()
	s.window.Reset()
}

func (s *Session) HasActiveFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria.IsActive()
}

// LoadMore grows the window over the current result set. It reports false when
// a concurrent LoadMore was already running or a load is outstanding.
func (s *Session) LoadMore() bool {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return false
	}
	total := len(FilterProducts(s.products, s.criteria))
	s.mu.Unlock()
	return s.window.LoadMore(total)
}

// View filters, sorts and windows the current dataset. Nothing is returned
// while a load is outstanding.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Loading:          s.loading,
		Category:         s.category,
		Items:            []catalog.Product{},
		DisplayCount:     s.window.DisplayCount(),
		Filters:          s.criteria,
		Sort:             s.sortKey,
		HasActiveFilters: s.criteria.IsActive(),
	}
	if s.loading {
		return v
	}
	sorted := s.sorter.Sort(FilterProducts(s.products, s.criteria), s.sortKey)
	v.Items = Visible(s.window, sorted)
	v.Total = len(sorted)
	v.HasMore = s.window.HasMore(len(sorted))
	return v
}

func (s *Session) update(fn func(c *FilterCriteria)) {
	s.mu.Lock()
	fn(&s.criteria)
	s.mu.Unlock()
	s.window.Reset()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}
