package product

import (
	"context"
	"strings"

	"github.com/angelmondragon/shophub/internal/catalog"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/metrics"
	"github.com/angelmondragon/shophub/pkg/pagination"
)

// ListInput describes a stateless product listing request.
type ListInput struct {
	Category string
	Criteria FilterCriteria
	Sort     SortKey
	Offset   int
	Limit    int
}

// ServiceParams groups dependencies for the product services.
type ServiceParams struct {
	Source   catalog.Source
	Registry *Registry
	Sorter   Sorter
	PageSize int
	Metrics  *metrics.Storefront
}

// Service exposes catalog reads with the filter/sort pipeline applied.
type Service interface {
	List(ctx context.Context, input ListInput) (pagination.Page[catalog.Product], error)
	Get(ctx context.Context, id int) (catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// BrowseService drives per-session browsing.
type BrowseService interface {
	View(ctx context.Context, sessionID string) (View, error)
	Load(ctx context.Context, sessionID, category string) (View, error)
	ToggleCategory(ctx context.Context, sessionID, category string) (View, error)
	SetPriceRange(ctx context.Context, sessionID string, r *PriceRange) (View, error)
	SetRating(ctx context.Context, sessionID string, rating *float64) (View, error)
	SetSearchQuery(ctx context.Context, sessionID, query string) (View, error)
	SetSort(ctx context.Context, sessionID string, key SortKey) (View, error)
	ClearFilters(ctx context.Context, sessionID string) (View, error)
	LoadMore(ctx context.Context, sessionID string) (LoadMoreResult, error)
}

// LoadMoreResult reports whether the trigger was applied or dropped as a duplicate.
type LoadMoreResult struct {
	View    View `json:"view"`
	Applied bool `json:"applied"`
}

type service struct {
	source   catalog.Source
	registry *Registry
	sorter   Sorter
	pageSize int
	metrics  *metrics.Storefront
}

// NewService builds the product listing service.
func NewService(params ServiceParams) (Service, error) {
	svc, err := newService(params)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// NewBrowseService builds the session browse service.
func NewBrowseService(params ServiceParams) (BrowseService, error) {
	if params.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "browse registry is required")
	}
	svc, err := newService(params)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newService(params ServiceParams) (*service, error) {
	if params.Source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog source is required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	sorter := params.Sorter
	if sorter == (Sorter{}) {
		sorter = NewSorter("en")
	}
	return &service{
		source:   params.Source,
		registry: params.Registry,
		sorter:   sorter,
		pageSize: pageSize,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (pagination.Page[catalog.Product], error) {
	var (
		items []catalog.Product
		err   error
	)
	if category := strings.TrimSpace(input.Category); category != "" {
		items, err = s.source.FetchProductsByCategory(ctx, category)
	} else {
		items, err = s.source.FetchAllProducts(ctx)
	}
	if err != nil {
		return pagination.Page[catalog.Product]{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	sorted := s.sorter.Sort(FilterProducts(items, input.Criteria), input.Sort)
	return pagination.Slice(sorted, input.Offset, limit), nil
}

func (s *service) Get(ctx context.Context, id int) (catalog.Product, error) {
	return s.source.FetchProductByID(ctx, id)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.source.FetchCategories(ctx)
}

func (s *service) View(ctx context.Context, sessionID string) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if !sess.Loaded() {
		if _, err := sess.Load(ctx, s.source, ""); err != nil {
			return View{}, err
		}
	}
	return sess.View(), nil
}

func (s *service) Load(ctx context.Context, sessionID, category string) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if _, err := sess.Load(ctx, s.source, category); err != nil {
		return View{}, err
	}
	return sess.View(), nil
}

func (s *service) ToggleCategory(_ context.Context, sessionID, category string) (View, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	sess.ToggleCategory(category)
	return sess.View(), nil
}

func (s *service) SetPriceRange(_ context.Context, sessionID string, r *PriceRange) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := sess.SetPriceRange(r); err != nil {
		return View{}, err
	}
	return sess.View(), nil
}

func (s *service) SetRating(_ context.Context, sessionID string, rating *float64) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := sess.SetRating(rating); err != nil {
		return View{}, err
	}
	return sess.View(), nil
}

func (s *service) SetSearchQuery(_ context.Context, sessionID, query string) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	sess.SetSearchQuery(query)
	return sess.View(), nil
}

func (s *service) SetSort(_ context.Context, sessionID string, key SortKey) (View, error) {
	if !key.IsValid() {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort key")
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	sess.SetSort(key)
	return sess.View(), nil
}

func (s *service) ClearFilters(_ context.Context, sessionID string) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	sess.ClearFilters()
	return sess.View(), nil
}

func (s *service) LoadMore(_ context.Context, sessionID string) (LoadMoreResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return LoadMoreResult{}, err
	}
	applied := sess.LoadMore()
	if !applied {
		s.metrics.IncLoadMoreSkipped()
	}
	return LoadMoreResult{View: sess.View(), Applied: applied}, nil
}

func (s *service) session(sessionID string) (*Session, error) {
	if s.registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "browse registry unavailable")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.registry.Session(sessionID), nil
}
