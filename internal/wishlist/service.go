package wishlist

import (
	"context"
	"strings"

	"github.com/angelmondragon/shophub/internal/cart"
	"github.com/angelmondragon/shophub/internal/catalog"
	"github.com/angelmondragon/shophub/internal/state"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

// View is the wishlist as returned to clients.
type View struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
}

// ToggleResult reports the membership of the toggled product afterwards.
type ToggleResult struct {
	View       View `json:"wishlist"`
	ProductID  int  `json:"product_id"`
	InWishlist bool `json:"in_wishlist"`
}

// MoveResult carries both aggregates after a move to the cart.
type MoveResult struct {
	Wishlist View      `json:"wishlist"`
	Cart     cart.View `json:"cart"`
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store   state.Store
	Catalog catalog.Source
	Cart    cart.Service
	Logger  *logger.Logger
}

// Service exposes business rules for wishlist management.
type Service interface {
	Get(ctx context.Context, sessionID string) (View, error)
	Toggle(ctx context.Context, sessionID string, productID int) (ToggleResult, error)
	AddItem(ctx context.Context, sessionID string, productID int) (View, error)
	RemoveItem(ctx context.Context, sessionID string, productID int) (View, error)
	Clear(ctx context.Context, sessionID string) (View, error)
	Contains(ctx context.Context, sessionID string, productID int) (bool, error)
	MoveToCart(ctx context.Context, sessionID string, productID int) (MoveResult, error)
}

type service struct {
	store   state.Store
	catalog catalog.Source
	cart    cart.Service
	locks   *state.KeyedMutex
	logg    *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "state store is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog source is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	return &service{
		store:   params.Store,
		catalog: params.Catalog,
		cart:    params.Cart,
		locks:   state.NewKeyedMutex(),
		logg:    params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	w, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return toView(w), nil
}

// Toggle flips membership. Adding resolves the product from the catalog first.
func (s *service) Toggle(ctx context.Context, sessionID string, productID int) (ToggleResult, error) {
	var in bool
	view, err := s.mutate(ctx, sessionID, func(w *Wishlist) (bool, error) {
		if w.Contains(productID) {
			w.Remove(productID)
			in = false
			return true, nil
		}
		p, err := s.resolve(ctx, productID)
		if err != nil {
			return false, err
		}
		in = w.Toggle(p)
		return true, nil
	})
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{View: view, ProductID: productID, InWishlist: in}, nil
}

// AddItem is a no-op when the product is already present.
func (s *service) AddItem(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.mutate(ctx, sessionID, func(w *Wishlist) (bool, error) {
		if w.Contains(productID) {
			return false, nil
		}
		p, err := s.resolve(ctx, productID)
		if err != nil {
			return false, err
		}
		return w.Add(p), nil
	})
}

// RemoveItem drops the entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.mutate(ctx, sessionID, func(w *Wishlist) (bool, error) {
		return w.Remove(productID), nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) (View, error) {
	return s.mutate(ctx, sessionID, func(w *Wishlist) (bool, error) {
		changed := w.Len() > 0
		w.Clear()
		return changed, nil
	})
}

func (s *service) Contains(ctx context.Context, sessionID string, productID int) (bool, error) {
	if err := requireSession(sessionID); err != nil {
		return false, err
	}
	w, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

// MoveToCart adds the wishlisted product to the cart and then removes it from the wishlist.
func (s *service) MoveToCart(ctx context.Context, sessionID string, productID int) (MoveResult, error) {
	if err := requireSession(sessionID); err != nil {
		return MoveResult{}, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	w, err := s.load(ctx, sessionID)
	if err != nil {
		return MoveResult{}, err
	}
	p, ok := w.Get(productID)
	if !ok {
		return MoveResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the wishlist")
	}
	cartView, err := s.cart.AddProduct(ctx, sessionID, p)
	if err != nil {
		return MoveResult{}, err
	}
	w.Remove(productID)
	if err := s.save(ctx, sessionID, w); err != nil {
		s.undoCartAdd(ctx, sessionID, p)
		return MoveResult{}, err
	}
	return MoveResult{Wishlist: toView(w), Cart: cartView}, nil
}

// undoCartAdd takes back the unit MoveToCart added when the wishlist could not be saved.
func (s *service) undoCartAdd(ctx context.Context, sessionID string, p catalog.Product) {
	added := cart.Cart{Lines: []cart.Line{{ProductID: p.ID, Product: p, Quantity: 1}}}
	if _, err := s.cart.RemoveLines(ctx, sessionID, added); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"product_id": p.ID,
			"error":      err.Error(),
		}), "product left in both cart and wishlist")
	}
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(w *Wishlist) (bool, error)) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	w, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	changed, err := fn(w)
	if err != nil {
		return View{}, err
	}
	if changed {
		if err := s.save(ctx, sessionID, w); err != nil {
			return View{}, err
		}
	}
	return toView(w), nil
}

func (s *service) resolve(ctx context.Context, productID int) (catalog.Product, error) {
	if productID <= 0 {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	return s.catalog.FetchProductByID(ctx, productID)
}

func (s *service) load(ctx context.Context, sessionID string) (*Wishlist, error) {
	w := New()
	if _, err := s.store.Load(ctx, sessionID, state.KeyWishlist, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) save(ctx context.Context, sessionID string, w *Wishlist) error {
	if err := s.store.Save(ctx, sessionID, state.KeyWishlist, w); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "persist wishlist", err)
		}
		return err
	}
	return nil
}

func toView(w *Wishlist) View {
	items := w.Items()
	return View{Items: items, Count: len(items)}
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
