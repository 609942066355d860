package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shophub/api/middleware"
	cartsvc "github.com/angelmondragon/shophub/internal/cart"
	"github.com/angelmondragon/shophub/internal/catalog"
	"github.com/angelmondragon/shophub/internal/state"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
)

type stubCatalog struct{}

func (stubCatalog) FetchAllProducts(context.Context) ([]catalog.Product, error) { return nil, nil }
func (stubCatalog) FetchCategories(context.Context) ([]string, error)           { return nil, nil }
func (stubCatalog) FetchProductsByCategory(context.Context, string) ([]catalog.Product, error) {
	return nil, nil
}

func (stubCatalog) FetchProductByID(_ context.Context, id int) (catalog.Product, error) {
	if id > 10 {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return catalog.Product{ID: id, Title: "Item", Price: 50, Category: "electronics"}, nil
}

const testSession = "session-test-1"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := cartsvc.NewService(cartsvc.ServiceParams{
		Store:   state.NewMemoryStore(),
		Catalog: stubCatalog{},
		Coupons: map[string]float64{"SAVE20": 20},
	})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	r := chi.NewRouter()
	r.Get("/api/v1/cart", CartFetch(svc, nil))
	r.Delete("/api/v1/cart", CartClear(svc, nil))
	r.Post("/api/v1/cart/items", CartAddItem(svc, nil))
	r.Put("/api/v1/cart/items/{productId}", CartSetQuantity(svc, nil))
	r.Delete("/api/v1/cart/items/{productId}", CartRemoveItem(svc, nil))
	r.Post("/api/v1/cart/items/{productId}/increment", CartIncrement(svc, nil))
	r.Post("/api/v1/cart/items/{productId}/decrement", CartDecrement(svc, nil))
	r.Post("/api/v1/cart/coupon", CartApplyCoupon(svc, nil))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, cartsvc.View) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithSessionID(req.Context(), testSession))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if resp.Code == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, envelope.Data
}

func TestCartLifecycle(t *testing.T) {
	h := newRouter(t)

	resp, view := do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	if resp.Code != http.StatusOK || view.ItemCount != 1 {
		t.Fatalf("add: status %d view %+v", resp.Code, view)
	}

	_, view = do(t, h, http.MethodPost, "/api/v1/cart/items/1/increment", "")
	if view.ItemCount != 2 {
		t.Fatalf("expected 2 items after increment, got %d", view.ItemCount)
	}
	if view.Totals.Subtotal != 100 || view.Totals.Tax != 18 || view.Totals.Shipping != 0 || view.Totals.Total != 118 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}

	_, view = do(t, h, http.MethodPost, "/api/v1/cart/coupon", `{"code":"save20"}`)
	if view.CouponCode != "SAVE20" || view.Totals.Discount != 20 {
		t.Fatalf("expected coupon applied, got %+v", view)
	}

	_, view = do(t, h, http.MethodPut, "/api/v1/cart/items/1", `{"quantity":5}`)
	if view.ItemCount != 5 {
		t.Fatalf("expected quantity 5, got %d", view.ItemCount)
	}

	_, view = do(t, h, http.MethodPut, "/api/v1/cart/items/1", `{"quantity":0}`)
	if len(view.Items) != 0 {
		t.Fatalf("quantity 0 should remove the line, got %+v", view.Items)
	}
}

func TestCartDecrementKeepsLine(t *testing.T) {
	h := newRouter(t)
	do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`)

	resp, view := do(t, h, http.MethodPost, "/api/v1/cart/items/2/decrement", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 1 {
		t.Fatalf("decrement must floor at 1, got %+v", view.Items)
	}

	_, view = do(t, h, http.MethodDelete, "/api/v1/cart/items/2", "")
	if len(view.Items) != 0 {
		t.Fatalf("expected line removed, got %+v", view.Items)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	h := newRouter(t)

	resp, _ := do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":99}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartValidation(t *testing.T) {
	h := newRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"missing product id", http.MethodPost, "/api/v1/cart/items", `{}`},
		{"unknown field", http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"qty":2}`},
		{"missing quantity", http.MethodPut, "/api/v1/cart/items/1", `{}`},
		{"bad path id", http.MethodPost, "/api/v1/cart/items/abc/increment", ""},
		{"empty coupon", http.MethodPost, "/api/v1/cart/coupon", `{"code":""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := do(t, h, tc.method, tc.path, tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestCartRequiresSession(t *testing.T) {
	h := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session, got %d", resp.Code)
	}
}
