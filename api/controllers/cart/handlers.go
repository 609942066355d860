package cart

import (
	"net/http"

	"github.com/angelmondragon/shophub/api/middleware"
	"github.com/angelmondragon/shophub/api/responses"
	"github.com/angelmondragon/shophub/api/validators"
	cartsvc "github.com/angelmondragon/shophub/internal/cart"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

// handle resolves the session, runs op and writes the resulting cart view.
func handle(svc cartsvc.Service, logg *logger.Logger, op func(w http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := middleware.RequireSessionID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := op(w, r, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartFetch returns the session cart with rounded totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		return svc.Get(r.Context(), sessionID)
	})
}

func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		var payload AddItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return cartsvc.View{}, err
		}
		return svc.AddItem(r.Context(), sessionID, payload.ProductID)
	})
}

func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return cartsvc.View{}, err
		}
		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return cartsvc.View{}, err
		}
		return svc.SetQuantity(r.Context(), sessionID, productID, *payload.Quantity)
	})
}

func CartIncrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return cartsvc.View{}, err
		}
		return svc.Increment(r.Context(), sessionID, productID)
	})
}

// CartDecrement never drops a line below one unit; use remove for that.
func CartDecrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return cartsvc.View{}, err
		}
		return svc.Decrement(r.Context(), sessionID, productID)
	})
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return cartsvc.View{}, err
		}
		return svc.RemoveItem(r.Context(), sessionID, productID)
	})
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(_ http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		return svc.Clear(r.Context(), sessionID)
	})
}

func CartApplyCoupon(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, sessionID string) (cartsvc.View, error) {
		var payload ApplyCouponRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return cartsvc.View{}, err
		}
		return svc.ApplyCoupon(r.Context(), sessionID, payload.Code)
	})
}
