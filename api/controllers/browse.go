package controllers

import (
	"net/http"

	"github.com/angelmondragon/shophub/api/middleware"
	"github.com/angelmondragon/shophub/api/responses"
	"github.com/angelmondragon/shophub/api/validators"
	product "github.com/angelmondragon/shophub/internal/products"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

type browseLoadRequest struct {
	Category string `json:"category" validate:"max=64"`
}

type browseCategoryRequest struct {
	Category string `json:"category" validate:"required,max=64"`
}

type browseRatingRequest struct {
	Rating *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

type browseSearchRequest struct {
	Query string `json:"query"`
}

type browseSortRequest struct {
	Sort string `json:"sort"`
}

// browseHandler runs fn for the caller's session and writes the resulting view.
func browseHandler(svc product.BrowseService, logg *logger.Logger, fn func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "browse service unavailable"))
			return
		}
		sessionID, err := middleware.RequireSessionID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := fn(w, r, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func BrowseView(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		return svc.View(r.Context(), sessionID)
	})
}

// BrowseLoad replaces the session dataset. The body is optional; no category loads the full catalog.
func BrowseLoad(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var body browseLoadRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(w, r, &body); err != nil {
				return nil, err
			}
		}
		return svc.Load(r.Context(), sessionID, body.Category)
	})
}

func BrowseToggleCategory(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var body browseCategoryRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			return nil, err
		}
		return svc.ToggleCategory(r.Context(), sessionID, body.Category)
	})
}

// BrowseSetPriceRange accepts {min?, max?}; null or an empty object clears the filter.
func BrowseSetPriceRange(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var body *product.PriceRange
		if err := validators.DecodeJSON(w, r, &body); err != nil {
			return nil, err
		}
		if body != nil && body.Min == nil && body.Max == nil {
			body = nil
		}
		return svc.SetPriceRange(r.Context(), sessionID, body)
	})
}

func BrowseSetRating(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var body browseRatingRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			return nil, err
		}
		return svc.SetRating(r.Context(), sessionID, body.Rating)
	})
}

func BrowseSetSearch(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var body browseSearchRequest
		if err := validators.DecodeJSON(w, r, &body); err != nil {
			return nil, err
		}
		return svc.SetSearchQuery(r.Context(), sessionID, validators.SanitizeString(body.Query, maxSearchLength))
	})
}

func BrowseSetSort(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var body browseSortRequest
		if err := validators.DecodeJSON(w, r, &body); err != nil {
			return nil, err
		}
		key, err := product.ParseSortKey(body.Sort)
		if err != nil {
			return nil, err
		}
		return svc.SetSort(r.Context(), sessionID, key)
	})
}

// BrowseLoadMore grows the window. A trigger dropped while another is in flight reports applied=false.
func BrowseLoadMore(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		return svc.LoadMore(r.Context(), sessionID)
	})
}

func BrowseClearFilters(svc product.BrowseService, logg *logger.Logger) http.HandlerFunc {
	return browseHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		return svc.ClearFilters(r.Context(), sessionID)
	})
}
