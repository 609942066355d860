package controllers

import (
	"net/http"

	"github.com/angelmondragon/shophub/api/middleware"
	"github.com/angelmondragon/shophub/api/responses"
	"github.com/angelmondragon/shophub/api/validators"
	"github.com/angelmondragon/shophub/internal/wishlist"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

type wishlistItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gte=1"`
}

func wishlistHandler(svc wishlist.Service, logg *logger.Logger, fn func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
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

func WishlistFetch(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistHandler(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		return svc.Get(r.Context(), sessionID)
	})
}

// WishlistToggle adds the product, or removes it when already saved.
func WishlistToggle(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return nil, err
		}
		return svc.Toggle(r.Context(), sessionID, payload.ProductID)
	})
}

func WishlistAddItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return nil, err
		}
		return svc.AddItem(r.Context(), sessionID, payload.ProductID)
	})
}

func WishlistRemoveItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistHandler(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return nil, err
		}
		return svc.RemoveItem(r.Context(), sessionID, productID)
	})
}

func WishlistClear(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistHandler(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		return svc.Clear(r.Context(), sessionID)
	})
}

// WishlistMoveToCart adds the saved product to the cart and drops it from the wishlist.
func WishlistMoveToCart(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistHandler(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (any, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return nil, err
		}
		return svc.MoveToCart(r.Context(), sessionID, productID)
	})
}
