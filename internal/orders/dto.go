package orders

import (
	"time"

	"github.com/angelmondragon/shophub/pkg/db/models"
	"github.com/angelmondragon/shophub/pkg/enums"
	"github.com/angelmondragon/shophub/pkg/money"
	"github.com/angelmondragon/shophub/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput is everything checkout knows once payment succeeded.
type CreateInput struct {
	SessionID       string
	UserEmail       string
	Items           []models.OrderItem
	ShippingAddress types.ShippingAddress
	PaymentMethod   enums.PaymentMethod
	PaymentStatus   enums.PaymentStatus
	TransactionID   string
	CouponCode      string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// ItemDTO is an order line as returned to clients.
type ItemDTO struct {
	ProductID int     `json:"product_id"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// TotalsDTO carries rounded order amounts.
type TotalsDTO struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// OrderDTO is the client view of an order.
type OrderDTO struct {
	ID                uuid.UUID             `json:"id"`
	Number            string                `json:"number"`
	Status            enums.OrderStatus     `json:"status"`
	PaymentMethod     enums.PaymentMethod   `json:"payment_method"`
	PaymentLabel      string                `json:"payment_label"`
	PaymentStatus     enums.PaymentStatus   `json:"payment_status"`
	TransactionID     string                `json:"transaction_id,omitempty"`
	UserEmail         string                `json:"user_email,omitempty"`
	CouponCode        string                `json:"coupon_code,omitempty"`
	Items             []ItemDTO             `json:"items"`
	ShippingAddress   types.ShippingAddress `json:"shipping_address"`
	Totals            TotalsDTO             `json:"totals"`
	OrderedAt         time.Time             `json:"ordered_at"`
	EstimatedDelivery time.Time             `json:"estimated_delivery"`
	CancelledAt       *time.Time            `json:"cancelled_at,omitempty"`
	Cancellable       bool                  `json:"cancellable"`
}

// ListResult is one cursor page of orders.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toDTO(o models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemDTO{
			ProductID: it.ProductID,
			Title:     it.Title,
			Category:  it.Category,
			Image:     it.Image,
			Price:     money.Float(it.Price),
			Quantity:  it.Quantity,
			LineTotal: money.Float(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}
	return OrderDTO{
		ID:              o.ID,
		Number:          o.Number,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentLabel:    o.PaymentMethod.Label(),
		PaymentStatus:   o.PaymentStatus,
		TransactionID:   deref(o.TransactionID),
		UserEmail:       deref(o.UserEmail),
		CouponCode:      deref(o.CouponCode),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		Totals: TotalsDTO{
			Subtotal: money.Float(o.Subtotal),
			Tax:      money.Float(o.Tax),
			Shipping: money.Float(o.Shipping),
			Discount: money.Float(o.Discount),
			Total:    money.Float(o.Total),
		},
		OrderedAt:         o.OrderedAt,
		EstimatedDelivery: o.EstimatedDelivery,
		CancelledAt:       o.CancelledAt,
		Cancellable:       o.Status.Cancellable(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
