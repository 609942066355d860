package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/shophub/pkg/db"
	"github.com/angelmondragon/shophub/pkg/db/models"
	"github.com/angelmondragon/shophub/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/money"
	"github.com/angelmondragon/shophub/pkg/pagination"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const (
	orderNumberPrefix     = "ORD-"
	defaultDeliveryWindow = 7 * 24 * time.Hour
)

// Service defines order operations for a shopper session.
type Service interface {
	Create(ctx context.Context, input CreateInput) (OrderDTO, error)
	List(ctx context.Context, sessionID string, params pagination.Params) (ListResult, error)
	Get(ctx context.Context, sessionID string, id uuid.UUID) (OrderDTO, error)
	Cancel(ctx context.Context, sessionID string, id uuid.UUID) (OrderDTO, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo           Repository
	Tx             txRunner
	DeliveryWindow time.Duration
	Now            func() time.Time
	Logger         *logger.Logger
}

type service struct {
	repo           Repository
	tx             txRunner
	deliveryWindow time.Duration
	now            func() time.Time
	logg           *logger.Logger
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	window := params.DeliveryWindow
	if window <= 0 {
		window = defaultDeliveryWindow
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:           params.Repo,
		tx:             params.Tx,
		deliveryWindow: window,
		now:            now,
		logg:           params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (OrderDTO, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if len(input.Items) == 0 {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items")
	}
	if !input.PaymentMethod.IsValid() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	placed := s.now().UTC().Truncate(time.Microsecond)
	order := &models.Order{
		ID:                uuid.New(),
		Number:            newOrderNumber(),
		SessionID:         input.SessionID,
		UserEmail:         optional(strings.ToLower(strings.TrimSpace(input.UserEmail))),
		Status:            enums.OrderStatusConfirmed,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     input.PaymentStatus,
		TransactionID:     optional(input.TransactionID),
		Items:             input.Items,
		ShippingAddress:   input.ShippingAddress.Normalize(),
		CouponCode:        optional(input.CouponCode),
		Subtotal:          money.Round(input.Subtotal),
		Tax:               money.Round(input.Tax),
		Shipping:          money.Round(input.Shipping),
		Discount:          money.Round(input.Discount),
		Total:             money.Round(input.Total),
		OrderedAt:         placed,
		EstimatedDelivery: placed.Add(s.deliveryWindow),
		CreatedAt:         placed,
		UpdatedAt:         placed,
	}

	created, err := s.repo.Create(ctx, order)
	if db.IsUniqueViolation(err, "") {
		// number collision: draw a new one and retry once
		order.Number = newOrderNumber()
		created, err = s.repo.Create(ctx, order)
	}
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id":     created.ID.String(),
			"order_number": created.Number,
		}), "order placed")
	}
	return toDTO(*created), nil
}

func newOrderNumber() string {
	return orderNumberPrefix + ulid.Make().String()
}

// List returns the session's orders newest first.
func (s *service) List(ctx context.Context, sessionID string, params pagination.Params) (ListResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return ListResult{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListBySession(ctx, sessionID, ListQuery{Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	out := ListResult{Orders: make([]OrderDTO, 0, len(rows))}
	for _, row := range rows {
		out.Orders = append(out.Orders, toDTO(row))
	}
	if next != nil {
		out.NextCursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id uuid.UUID) (OrderDTO, error) {
	order, err := s.find(ctx, s.repo, sessionID, id)
	if err != nil {
		return OrderDTO{}, err
	}
	return toDTO(*order), nil
}

// Cancel moves a pending or confirmed order to cancelled.
func (s *service) Cancel(ctx context.Context, sessionID string, id uuid.UUID) (OrderDTO, error) {
	var result models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.find(ctx, repo, sessionID, id)
		if err != nil {
			return err
		}
		if !order.Status.Cancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		at := s.now().UTC().Truncate(time.Microsecond)
		changed, err := repo.MarkCancelled(ctx, sessionID, id, at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}

		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &at
		order.UpdatedAt = at
		result = *order
		return nil
	})
	if err != nil {
		return OrderDTO{}, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", id.String()), "order cancelled")
	}
	return toDTO(result), nil
}

func (s *service) find(ctx context.Context, repo Repository, sessionID string, id uuid.UUID) (*models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	order, err := repo.FindByID(ctx, sessionID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
