package controllers

import (
	"net/http"

	"github.com/angelmondragon/shophub/api/middleware"
	"github.com/angelmondragon/shophub/api/responses"
	"github.com/angelmondragon/shophub/api/validators"
	"github.com/angelmondragon/shophub/internal/checkout"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

// Checkout charges the session cart and places the order. Field validation happens in the service.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := middleware.RequireSessionID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkout.PlaceOrderInput
		if err := validators.DecodeJSON(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"order_id":     order.ID.String(),
				"order_number": order.Number,
			})
			logg.Info(ctx, "checkout.order_placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
