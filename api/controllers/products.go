package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shophub/api/responses"
	"github.com/angelmondragon/shophub/api/validators"
	product "github.com/angelmondragon/shophub/internal/products"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/pagination"
)

const (
	maxSearchLength = 128
	maxPriceFilter  = 1_000_000
	maxOffset       = 100_000
)

// ProductList serves the stateless filtered, sorted and paged product listing.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CategoryProducts is ProductList scoped to the category in the path.
func CategoryProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		category, err := url.PathUnescape(chi.URLParam(r, "category"))
		if err != nil || strings.TrimSpace(category) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Category = category

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CategoryList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func parseListInput(r *http.Request) (product.ListInput, error) {
	var input product.ListInput

	sortKey, err := product.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		return input, err
	}
	input.Sort = sortKey

	minPrice, err := validators.ParseQueryFloat(r, "min_price", 0, maxPriceFilter)
	if err != nil {
		return input, err
	}
	maxPrice, err := validators.ParseQueryFloat(r, "max_price", 0, maxPriceFilter)
	if err != nil {
		return input, err
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	if minPrice != nil || maxPrice != nil {
		input.Criteria.PriceRange = &product.PriceRange{Min: minPrice, Max: maxPrice}
	}

	rating, err := validators.ParseQueryFloat(r, "rating", 0, 5)
	if err != nil {
		return input, err
	}
	if rating != nil && *rating > 0 {
		input.Criteria.Rating = rating
	}

	input.Criteria.Categories = validators.ParseQueryList(r, "category")
	input.Criteria.SearchQuery = validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength)

	if input.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit); err != nil {
		return input, err
	}
	if input.Offset, err = validators.ParseQueryInt(r, "offset", 0, 0, maxOffset); err != nil {
		return input, err
	}
	return input, nil
}
