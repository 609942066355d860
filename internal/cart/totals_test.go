package cart

import (
	"testing"

	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/shopspring/decimal"
)

func TestTotalsAtFreeShippingThreshold(t *testing.T) {
	var c Cart
	c.Add(product(1, 100))
	got := DefaultPricing.Compute(c).DTO()
	want := TotalsDTO{Subtotal: 100, Tax: 18, Shipping: 0, Total: 118}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTotalsBelowThresholdAddsShipping(t *testing.T) {
	var c Cart
	c.Add(product(1, 25))
	c.Add(product(1, 25))
	got := DefaultPricing.Compute(c).DTO()
	want := TotalsDTO{Subtotal: 50, Tax: 9, Shipping: 5.99, Total: 64.99}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTotalsRoundOnlyOnOutput(t *testing.T) {
	var c Cart
	for i := 0; i < 3; i++ {
		c.Add(product(i+1, 0.335))
	}
	totals := DefaultPricing.Compute(c)
	if !totals.Subtotal.Equal(decimal.RequireFromString("1.005")) {
		t.Fatalf("expected full precision subtotal, got %s", totals.Subtotal)
	}
	if !totals.Tax.Equal(decimal.RequireFromString("0.1809")) {
		t.Fatalf("expected full precision tax, got %s", totals.Tax)
	}
	// 1.005 + 0.1809 + 5.99 = 7.1759
	if got := totals.DTO(); got.Subtotal != 1.01 || got.Tax != 0.18 || got.Total != 7.18 {
		t.Fatalf("unexpected rounded totals %+v", got)
	}
}

func TestTotalsEmptyCartIsZero(t *testing.T) {
	if got := DefaultPricing.Compute(Cart{}).DTO(); got != (TotalsDTO{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestTotalsDiscountFloorsAtZero(t *testing.T) {
	var c Cart
	c.Add(product(1, 5))
	c.ApplyDiscount("BIG", decimal.NewFromInt(500))
	got := DefaultPricing.Compute(c).DTO()
	if got.Total != 0 || got.Discount != 500 {
		t.Fatalf("expected total floored at zero, got %+v", got)
	}

	var d Cart
	d.Add(product(1, 100))
	d.ApplyDiscount("WELCOME10", decimal.NewFromInt(10))
	if got := DefaultPricing.Compute(d).DTO(); got.Total != 108 {
		t.Fatalf("expected 118 - 10, got %+v", got)
	}
}

func TestPricingFromConfig(t *testing.T) {
	p := PricingFromConfig(config.StorefrontConfig{TaxRate: 0.1, ShippingCost: 3, FreeShippingThreshold: 50})
	var c Cart
	c.Add(product(1, 40))
	got := p.Compute(c).DTO()
	if got.Tax != 4 || got.Shipping != 3 || got.Total != 47 {
		t.Fatalf("unexpected totals %+v", got)
	}
}
