package cart

import (
	"context"
	"strings"

	"github.com/angelmondragon/shophub/internal/catalog"
	"github.com/angelmondragon/shophub/internal/state"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/metrics"
	"github.com/angelmondragon/shophub/pkg/money"
)

// View is the cart as returned to clients.
type View struct {
	Items      []Line    `json:"items"`
	ItemCount  int       `json:"item_count"`
	CouponCode string    `json:"coupon_code,omitempty"`
	Totals     TotalsDTO `json:"totals"`
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store   state.Store
	Catalog catalog.Source
	Pricing Pricing
	Coupons map[string]float64
	Metrics *metrics.Storefront
	Logger  *logger.Logger
}

// Service exposes session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (View, error)
	AddItem(ctx context.Context, sessionID string, productID int) (View, error)
	AddProduct(ctx context.Context, sessionID string, p catalog.Product) (View, error)
	RemoveItem(ctx context.Context, sessionID string, productID int) (View, error)
	SetQuantity(ctx context.Context, sessionID string, productID, quantity int) (View, error)
	Increment(ctx context.Context, sessionID string, productID int) (View, error)
	Decrement(ctx context.Context, sessionID string, productID int) (View, error)
	Clear(ctx context.Context, sessionID string) (View, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (View, error)
	Snapshot(ctx context.Context, sessionID string) (Cart, Totals, error)
	RemoveLines(ctx context.Context, sessionID string, lines Cart) (View, error)
}

type service struct {
	store   state.Store
	catalog catalog.Source
	pricing Pricing
	coupons map[string]float64
	locks   *state.KeyedMutex
	metrics *metrics.Storefront
	logg    *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "state store is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog source is required")
	}
	pricing := params.Pricing
	if pricing.TaxRate.IsZero() && pricing.ShippingCost.IsZero() && pricing.FreeShippingThreshold.IsZero() {
		pricing = DefaultPricing
	}
	coupons := make(map[string]float64, len(params.Coupons))
	for code, amount := range params.Coupons {
		coupons[normalizeCoupon(code)] = amount
	}
	return &service{
		store:   params.Store,
		catalog: params.Catalog,
		pricing: pricing,
		coupons: coupons,
		locks:   state.NewKeyedMutex(),
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(c), nil
}

// AddItem resolves the product from the catalog and adds it.
func (s *service) AddItem(ctx context.Context, sessionID string, productID int) (View, error) {
	if productID <= 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	p, err := s.catalog.FetchProductByID(ctx, productID)
	if err != nil {
		return View{}, err
	}
	return s.AddProduct(ctx, sessionID, p)
}

func (s *service) AddProduct(ctx context.Context, sessionID string, p catalog.Product) (View, error) {
	return s.mutate(ctx, sessionID, "add", func(c *Cart) (bool, error) {
		c.Add(p)
		return true, nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *Cart) (bool, error) {
		return c.Remove(productID), nil
	})
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, productID, quantity int) (View, error) {
	return s.mutate(ctx, sessionID, "set_quantity", func(c *Cart) (bool, error) {
		return c.SetQuantity(productID, quantity), nil
	})
}

func (s *service) Increment(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.mutate(ctx, sessionID, "increment", func(c *Cart) (bool, error) {
		return c.Increment(productID), nil
	})
}

func (s *service) Decrement(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.mutate(ctx, sessionID, "decrement", func(c *Cart) (bool, error) {
		return c.Decrement(productID), nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) (View, error) {
	return s.mutate(ctx, sessionID, "clear", func(c *Cart) (bool, error) {
		c.Clear()
		return true, nil
	})
}

func (s *service) ApplyCoupon(ctx context.Context, sessionID, code string) (View, error) {
	code = normalizeCoupon(code)
	if code == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	amount, ok := s.coupons[code]
	if !ok {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
	}
	return s.mutate(ctx, sessionID, "apply_coupon", func(c *Cart) (bool, error) {
		if c.IsEmpty() {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot apply a coupon to an empty cart")
		}
		c.ApplyDiscount(code, money.FromFloat(amount))
		return true, nil
	})
}

// Snapshot returns the stored cart and its full-precision totals.
func (s *service) Snapshot(ctx context.Context, sessionID string) (Cart, Totals, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, Totals{}, err
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return Cart{}, Totals{}, err
	}
	return c, s.pricing.Compute(c), nil
}

// RemoveLines subtracts the quantities in lines from the stored cart, typically
// a checkout snapshot. Anything added after that snapshot stays.
func (s *service) RemoveLines(ctx context.Context, sessionID string, lines Cart) (View, error) {
	return s.mutate(ctx, sessionID, "remove_lines", func(c *Cart) (bool, error) {
		return c.Subtract(lines), nil
	})
}

// mutate runs fn under the session lock and persists the cart when fn reports a change.
func (s *service) mutate(ctx context.Context, sessionID, op string, fn func(c *Cart) (bool, error)) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	changed, err := fn(&c)
	if err != nil {
		return View{}, err
	}
	if changed {
		if err := s.store.Save(ctx, sessionID, state.KeyCart, c); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithField(ctx, "cart_op", op), "persist cart", err)
			}
			return View{}, err
		}
		s.metrics.IncCartMutation(op)
	}
	return s.view(c), nil
}

func (s *service) load(ctx context.Context, sessionID string) (Cart, error) {
	var c Cart
	if _, err := s.store.Load(ctx, sessionID, state.KeyCart, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *service) view(c Cart) View {
	items := c.Lines
	if items == nil {
		items = []Line{}
	}
	return View{
		Items:      items,
		ItemCount:  c.ItemCount(),
		CouponCode: c.CouponCode,
		Totals:     s.pricing.Compute(c).DTO(),
	}
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

func normalizeCoupon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
