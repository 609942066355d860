package cart

import (
	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/angelmondragon/shophub/pkg/money"
	"github.com/shopspring/decimal"
)

// Pricing holds the constants of the totals formula.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingCost          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// DefaultPricing is 18% tax and 5.99 shipping below a 100 subtotal.
var DefaultPricing = Pricing{
	TaxRate:               decimal.RequireFromString("0.18"),
	ShippingCost:          decimal.RequireFromString("5.99"),
	FreeShippingThreshold: decimal.NewFromInt(100),
}

func PricingFromConfig(cfg config.StorefrontConfig) Pricing {
	return Pricing{
		TaxRate:               money.FromFloat(cfg.TaxRate),
		ShippingCost:          money.FromFloat(cfg.ShippingCost),
		FreeShippingThreshold: money.FromFloat(cfg.FreeShippingThreshold),
	}
}

// Totals are kept at full precision; round only when presenting.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// TotalsDTO is the rounded, presented form of Totals.
type TotalsDTO struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Compute derives totals from the cart lines. An empty cart totals zero.
func (p Pricing) Compute(c Cart) Totals {
	if c.IsEmpty() {
		return Totals{}
	}
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(money.FromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(p.TaxRate)
	shipping := p.ShippingCost
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	total := money.Max(decimal.Zero, subtotal.Add(tax).Add(shipping).Sub(c.Discount))
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: c.Discount,
		Total:    total,
	}
}

func (t Totals) DTO() TotalsDTO {
	return TotalsDTO{
		Subtotal: money.Float(t.Subtotal),
		Tax:      money.Float(t.Tax),
		Shipping: money.Float(t.Shipping),
		Discount: money.Float(t.Discount),
		Total:    money.Float(t.Total),
	}
}
