package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/shophub/internal/cart"
	"github.com/angelmondragon/shophub/internal/orders"
	"github.com/angelmondragon/shophub/internal/state"
	pkgcheckout "github.com/angelmondragon/shophub/pkg/checkout"
	"github.com/angelmondragon/shophub/pkg/db/models"
	"github.com/angelmondragon/shophub/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/metrics"
	"github.com/angelmondragon/shophub/pkg/money"
	"github.com/go-playground/validator/v10"
)

const (
	outcomeSuccess  = "success"
	outcomeInvalid  = "invalid"
	outcomeEmpty    = "empty_cart"
	outcomeDeclined = "declined"
	outcomeError    = "error"
)

// Service places orders from the session cart.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string, input PlaceOrderInput) (orders.OrderDTO, error)
}

// ServiceParams groups dependencies for checkout.
type ServiceParams struct {
	Cart      cart.Service
	Orders    orders.Service
	Processor PaymentProcessor
	Now       func() time.Time
	Metrics   *metrics.Storefront
	Logger    *logger.Logger
}

type service struct {
	cart      cart.Service
	orders    orders.Service
	processor PaymentProcessor
	validate  *validator.Validate
	locks     *state.KeyedMutex
	metrics   *metrics.Storefront
	logg      *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders service is required")
	}
	processor := params.Processor
	if processor == nil {
		processor = NewSimulatedProcessor(defaultPaymentDelay)
	}
	return &service{
		cart:      params.Cart,
		orders:    params.Orders,
		processor: processor,
		validate:  pkgcheckout.NewValidator(params.Now),
		locks:     state.NewKeyedMutex(),
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, sessionID string, input PlaceOrderInput) (orders.OrderDTO, error) {
	if strings.TrimSpace(sessionID) == "" {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	input = input.normalize()
	if err := s.validateInput(input); err != nil {
		s.metrics.IncCheckout(outcomeInvalid)
		return orders.OrderDTO{}, err
	}
	method := enums.PaymentMethod(input.PaymentMethod)

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, totals, err := s.cart.Snapshot(ctx, sessionID)
	if err != nil {
		s.metrics.IncCheckout(outcomeError)
		return orders.OrderDTO{}, err
	}
	if c.IsEmpty() {
		s.metrics.IncCheckout(outcomeEmpty)
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	result, err := s.processor.Charge(ctx, ChargeRequest{
		SessionID: sessionID,
		Method:    method,
		Amount:    money.Round(totals.Total),
		Card:      input.Card,
		UPI:       input.UPI,
	})
	if err != nil {
		s.metrics.IncCheckout(outcomeError)
		if ctx.Err() != nil {
			return orders.OrderDTO{}, err
		}
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment processor unavailable")
	}
	if result.Status != enums.PaymentStatusApproved {
		s.metrics.IncCheckout(outcomeDeclined)
		perr := pkgerrors.New(pkgerrors.CodePayment, "payment declined")
		if result.Reason != "" {
			perr = perr.WithDetails(map[string]any{"reason": result.Reason})
		}
		return orders.OrderDTO{}, perr
	}

	order, err := s.orders.Create(ctx, orders.CreateInput{
		SessionID:       sessionID,
		UserEmail:       input.ShippingAddress.Email,
		Items:           orderItems(c),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		PaymentStatus:   result.Status,
		TransactionID:   result.TransactionID,
		CouponCode:      c.CouponCode,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
	})
	if err != nil {
		s.metrics.IncCheckout(outcomeError)
		return orders.OrderDTO{}, err
	}

	if _, err := s.cart.RemoveLines(ctx, sessionID, c); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"error":    err.Error(),
		}), "order placed but cart was not cleared")
	}
	s.metrics.IncCheckout(outcomeSuccess)
	return order, nil
}

// validateInput checks the address and the details of the chosen payment method.
func (s *service) validateInput(input PlaceOrderInput) error {
	details := map[string]string{}
	if err := s.validate.Struct(input); err != nil {
		fields, ok := pkgcheckout.FieldErrors(err)
		if !ok {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout details")
		}
		for k, v := range fields {
			details[k] = v
		}
	}

	switch enums.PaymentMethod(input.PaymentMethod) {
	case enums.PaymentMethodCard:
		if input.Card == nil {
			details["card"] = "is required"
		}
	case enums.PaymentMethodUPI:
		if input.UPI == nil {
			details["upi"] = "is required"
		}
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout details").WithDetails(details)
	}
	return nil
}

func orderItems(c cart.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Title:     l.Product.Title,
			Category:  l.Product.Category,
			Image:     l.Product.Image,
			Price:     money.FromFloat(l.Product.Price),
			Quantity:  l.Quantity,
		})
	}
	return items
}
