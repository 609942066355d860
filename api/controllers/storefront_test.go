package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/shophub/api/middleware"
	"github.com/angelmondragon/shophub/internal/auth"
	"github.com/angelmondragon/shophub/internal/cart"
	"github.com/angelmondragon/shophub/internal/checkout"
	"github.com/angelmondragon/shophub/internal/orders"
	"github.com/angelmondragon/shophub/internal/state"
	"github.com/angelmondragon/shophub/internal/wishlist"
	"github.com/angelmondragon/shophub/pkg/config"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
)

func withSession(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), "storefront-session"))
}

type stubCheckout struct {
	input checkout.PlaceOrderInput
	order orders.OrderDTO
	err   error
}

func (s *stubCheckout) PlaceOrder(_ context.Context, _ string, input checkout.PlaceOrderInput) (orders.OrderDTO, error) {
	s.input = input
	return s.order, s.err
}

func TestCheckoutCreatesOrder(t *testing.T) {
	svc := &stubCheckout{order: orders.OrderDTO{ID: uuid.New(), Number: "ORD-1"}}
	body := `{"shipping_address":{"full_name":"Asha Rao","email":"asha@example.com","phone":"98765-43210","address":"12 MG Road","city":"Bengaluru","state":"Karnataka","pincode":"560001"},"payment_method":"upi","upi":{"id":"asha@okbank"}}`

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.PaymentMethod != "upi" || svc.input.UPI == nil || svc.input.UPI.ID != "asha@okbank" {
		t.Fatalf("unexpected decoded input %+v", svc.input)
	}
	if svc.input.ShippingAddress.Pincode != "560001" {
		t.Fatalf("shipping address not decoded: %+v", svc.input.ShippingAddress)
	}
}

func TestCheckoutMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty"), http.StatusUnprocessableEntity},
		{pkgerrors.New(pkgerrors.CodePayment, "payment declined"), http.StatusPaymentRequired},
		{pkgerrors.New(pkgerrors.CodeDependency, "payment processor unavailable"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"cod"}`)))
		resp := httptest.NewRecorder()
		Checkout(&stubCheckout{err: tc.err}, nil).ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.want, resp.Code)
		}
	}
}

func TestCheckoutRejectsMalformedBody(t *testing.T) {
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":`)))
	resp := httptest.NewRecorder()
	Checkout(&stubCheckout{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubAuth struct {
	user     auth.User
	err      error
	loggedIn bool
}

func (s *stubAuth) Login(_ context.Context, _ string, req auth.LoginRequest) (auth.AuthResponse, error) {
	if s.err != nil {
		return auth.AuthResponse{}, s.err
	}
	return auth.AuthResponse{Token: "tok", User: auth.User{Email: req.Email}}, nil
}

func (s *stubAuth) Register(_ context.Context, _ string, req auth.RegisterRequest) (auth.AuthResponse, error) {
	if s.err != nil {
		return auth.AuthResponse{}, s.err
	}
	return auth.AuthResponse{Token: "signed", User: auth.User{Email: req.Email, Name: req.Name}}, nil
}

func (s *stubAuth) Logout(context.Context, string) error {
	s.loggedIn = false
	return s.err
}

func (s *stubAuth) Current(context.Context, string) (auth.User, error) {
	if !s.loggedIn {
		return auth.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")
	}
	return s.user, nil
}

func TestAuthEndpoints(t *testing.T) {
	svc := &stubAuth{user: auth.User{ID: 1, Email: "john@example.com", Name: "john"}, loggedIn: true}

	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"john@example.com","password":"pw"}`))))
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"name":"Jane Doe","email":"jane@example.com","password":"Secur3!pass"}`))))
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)))
	var envelope struct {
		Data auth.User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data != svc.user {
		t.Fatalf("unexpected user %+v", envelope.Data)
	}

	resp = httptest.NewRecorder()
	AuthLogout(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401 got %d", resp.Code)
	}
}

func TestAuthLoginRejected(t *testing.T) {
	svc := &stubAuth{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}

	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"john@example.com","password":"bad"}`))))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func wishlistRouter(t *testing.T) http.Handler {
	t.Helper()
	store := state.NewMemoryStore()
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: store, Catalog: testCatalog()})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	svc, err := wishlist.NewService(wishlist.ServiceParams{Store: store, Catalog: testCatalog(), Cart: cartSvc})
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}
	r := chi.NewRouter()
	r.Get("/api/v1/wishlist", WishlistFetch(svc, nil))
	r.Delete("/api/v1/wishlist", WishlistClear(svc, nil))
	r.Post("/api/v1/wishlist/toggle", WishlistToggle(svc, nil))
	r.Post("/api/v1/wishlist/items", WishlistAddItem(svc, nil))
	r.Delete("/api/v1/wishlist/items/{productId}", WishlistRemoveItem(svc, nil))
	r.Post("/api/v1/wishlist/items/{productId}/move-to-cart", WishlistMoveToCart(svc, nil))
	return r
}

func TestWishlistToggleAndMove(t *testing.T) {
	h := wishlistRouter(t)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/toggle", strings.NewReader(`{"product_id":4}`))))
	var toggled struct {
		Data wishlist.ToggleResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if !toggled.Data.InWishlist || toggled.Data.View.Count != 1 {
		t.Fatalf("expected product saved, got %+v", toggled.Data)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items/4/move-to-cart", nil)))
	var moved struct {
		Data wishlist.MoveResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&moved); err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if moved.Data.Wishlist.Count != 0 || moved.Data.Cart.ItemCount != 1 {
		t.Fatalf("expected product moved to cart, got %+v", moved.Data)
	}
}

func TestWishlistRejectsBadProductID(t *testing.T) {
	h := wishlistRouter(t)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/wishlist/items/zero", nil)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items", strings.NewReader(`{"product_id":0}`))))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, []ReadinessCheck{{Name: "redis", Pinger: stubPinger{}}, {Name: "db"}}, nil).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, []ReadinessCheck{{Name: "db", Pinger: stubPinger{err: errors.New("down")}}}, nil).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK || resp.Header().Get("X-ShopHub-Env") != "dev" {
		t.Fatalf("unexpected live response %d %v", resp.Code, resp.Header())
	}
}
