package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shophub/pkg/enums"
	"github.com/angelmondragon/shophub/pkg/types"
)

// OrderItem is a purchased line frozen at checkout time.
type OrderItem struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is a placed storefront order scoped to the shopper session.
type Order struct {
	ID                uuid.UUID             `gorm:"column:id;type:varchar(36);primaryKey"`
	Number            string                `gorm:"column:number;not null"`
	SessionID         string                `gorm:"column:session_id;not null"`
	UserEmail         *string               `gorm:"column:user_email"`
	Status            enums.OrderStatus     `gorm:"column:status;not null;default:'confirmed'"`
	PaymentMethod     enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	PaymentStatus     enums.PaymentStatus   `gorm:"column:payment_status;not null"`
	TransactionID     *string               `gorm:"column:transaction_id"`
	Items             []OrderItem           `gorm:"column:items;type:text;serializer:json;not null"`
	ShippingAddress   types.ShippingAddress `gorm:"column:shipping_address;type:text;not null"`
	CouponCode        *string               `gorm:"column:coupon_code"`
	Subtotal          decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax               decimal.Decimal       `gorm:"column:tax;type:numeric(12,2);not null"`
	Shipping          decimal.Decimal       `gorm:"column:shipping;type:numeric(12,2);not null"`
	Discount          decimal.Decimal       `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total             decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	OrderedAt         time.Time             `gorm:"column:ordered_at;not null"`
	EstimatedDelivery time.Time             `gorm:"column:estimated_delivery;not null"`
	CancelledAt       *time.Time            `gorm:"column:cancelled_at"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
