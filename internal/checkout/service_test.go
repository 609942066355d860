package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/shophub/internal/cart"
	"github.com/angelmondragon/shophub/internal/catalog"
	"github.com/angelmondragon/shophub/internal/orders"
	"github.com/angelmondragon/shophub/internal/state"
	"github.com/angelmondragon/shophub/pkg/enums"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/pagination"
	"github.com/angelmondragon/shophub/pkg/types"
	"github.com/google/uuid"
)

type stubCatalog struct{}

func (stubCatalog) FetchAllProducts(context.Context) ([]catalog.Product, error) { return nil, nil }
func (stubCatalog) FetchCategories(context.Context) ([]string, error)           { return nil, nil }
func (stubCatalog) FetchProductsByCategory(context.Context, string) ([]catalog.Product, error) {
	return nil, nil
}

func (stubCatalog) FetchProductByID(_ context.Context, id int) (catalog.Product, error) {
	return catalog.Product{ID: id, Title: "Item", Price: 50, Category: "electronics"}, nil
}

type stubOrders struct {
	created []orders.CreateInput
	err     error
}

func (s *stubOrders) Create(_ context.Context, input orders.CreateInput) (orders.OrderDTO, error) {
	if s.err != nil {
		return orders.OrderDTO{}, s.err
	}
	s.created = append(s.created, input)
	return orders.OrderDTO{ID: uuid.New(), Number: "ORD-TEST", Status: enums.OrderStatusConfirmed}, nil
}

func (s *stubOrders) List(context.Context, string, pagination.Params) (orders.ListResult, error) {
	return orders.ListResult{}, nil
}

func (s *stubOrders) Get(context.Context, string, uuid.UUID) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}

func (s *stubOrders) Cancel(context.Context, string, uuid.UUID) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}

type stubProcessor struct {
	result ChargeResult
	err    error
	calls  int
}

func (p *stubProcessor) Charge(context.Context, ChargeRequest) (ChargeResult, error) {
	p.calls++
	return p.result, p.err
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func validAddress() types.ShippingAddress {
	return types.ShippingAddress{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "98765-43210",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560001",
	}
}

type fixture struct {
	svc       Service
	cart      cart.Service
	orders    *stubOrders
	processor *stubProcessor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: state.NewMemoryStore(), Catalog: stubCatalog{}})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	ord := &stubOrders{}
	proc := &stubProcessor{result: ChargeResult{Status: enums.PaymentStatusApproved, TransactionID: "txn-1"}}
	svc, err := NewService(ServiceParams{Cart: cartSvc, Orders: ord, Processor: proc, Now: fixedNow})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	return fixture{svc: svc, cart: cartSvc, orders: ord, processor: proc}
}

func TestPlaceOrderClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.cart.AddItem(ctx, "s1", 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.cart.Increment(ctx, "s1", 1); err != nil {
		t.Fatalf("increment: %v", err)
	}

	order, err := f.svc.PlaceOrder(ctx, "s1", PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "COD",
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.Number != "ORD-TEST" {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("expected one order, got %d", len(f.orders.created))
	}
	in := f.orders.created[0]
	if in.PaymentMethod != enums.PaymentMethodCOD || in.TransactionID != "txn-1" {
		t.Fatalf("unexpected payment fields %+v", in)
	}
	if len(in.Items) != 1 || in.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", in.Items)
	}
	if in.Subtotal.String() != "100" {
		t.Fatalf("unexpected subtotal %s", in.Subtotal)
	}
	if in.Total.String() != "118" {
		t.Fatalf("expected total 118, got %s", in.Total)
	}

	view, err := f.cart.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected cart cleared, got %+v", view.Items)
	}
}

// addingProcessor adds a product to the cart while the charge is in flight.
type addingProcessor struct {
	cart      cart.Service
	productID int
}

func (p addingProcessor) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if _, err := p.cart.AddItem(ctx, req.SessionID, p.productID); err != nil {
		return ChargeResult{}, err
	}
	return ChargeResult{Status: enums.PaymentStatusApproved, TransactionID: "txn-2"}, nil
}

func TestPlaceOrderKeepsItemsAddedDuringPayment(t *testing.T) {
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: state.NewMemoryStore(), Catalog: stubCatalog{}})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	ord := &stubOrders{}
	svc, err := NewService(ServiceParams{
		Cart:      cartSvc,
		Orders:    ord,
		Processor: addingProcessor{cart: cartSvc, productID: 2},
		Now:       fixedNow,
	})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	ctx := context.Background()
	if _, err := cartSvc.AddItem(ctx, "s1", 1); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if _, err := svc.PlaceOrder(ctx, "s1", PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "cod",
	}); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(ord.created) != 1 || len(ord.created[0].Items) != 1 || ord.created[0].Items[0].ProductID != 1 {
		t.Fatalf("unexpected ordered items %+v", ord.created)
	}

	view, err := cartSvc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != 2 || view.Items[0].Quantity != 1 {
		t.Fatalf("expected product 2 left in the cart, got %+v", view.Items)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "s1", PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "cod",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if f.processor.calls != 0 {
		t.Fatalf("processor should not be charged for an empty cart")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	addr := validAddress()
	addr.Pincode = "5600"
	addr.Phone = "12345"

	_, err := f.svc.PlaceOrder(context.Background(), "s1", PlaceOrderInput{
		ShippingAddress: addr,
		PaymentMethod:   "card",
		Card:            &CardDetails{Number: "4111 1111 1111 1112", Name: "Asha Rao", Expiry: "02/26", CVV: "12"},
	})
	perr := pkgerrors.As(err)
	if perr == nil || perr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := perr.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", perr.Details())
	}
	for _, field := range []string{"shipping_address.pincode", "shipping_address.phone", "card.number", "card.expiry", "card.cvv"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected %s in details %v", field, details)
		}
	}
}

func TestPlaceOrderRequiresMethodDetails(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "s1", PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "upi",
		Card:            &CardDetails{Number: "bogus"},
	})
	perr := pkgerrors.As(err)
	if perr == nil || perr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := perr.Details().(map[string]string)
	if details["upi"] != "is required" {
		t.Fatalf("expected upi required, got %v", details)
	}
	if _, ok := details["card.number"]; ok {
		t.Fatalf("card details should be ignored for upi payments")
	}
}

func TestPlaceOrderDeclined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.cart.AddItem(ctx, "s1", 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	f.processor.result = ChargeResult{Status: enums.PaymentStatusDeclined, Reason: "insufficient funds"}

	_, err := f.svc.PlaceOrder(ctx, "s1", PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "upi",
		UPI:             &UPIDetails{ID: "asha@okbank"},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodePayment) {
		t.Fatalf("expected payment error, got %v", err)
	}
	if len(f.orders.created) != 0 {
		t.Fatalf("declined payment must not create an order")
	}
	view, _ := f.cart.Get(ctx, "s1")
	if len(view.Items) != 1 {
		t.Fatalf("declined payment must keep the cart")
	}
}

func TestPlaceOrderProcessorFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.cart.AddItem(ctx, "s1", 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	f.processor.err = errors.New("gateway timeout")

	_, err := f.svc.PlaceOrder(ctx, "s1", PlaceOrderInput{ShippingAddress: validAddress(), PaymentMethod: "cod"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestSimulatedProcessor(t *testing.T) {
	p := NewSimulatedProcessor(0)
	res, err := p.Charge(context.Background(), ChargeRequest{Method: enums.PaymentMethodCOD})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if res.Status != enums.PaymentStatusApproved {
		t.Fatalf("expected approval, got %s", res.Status)
	}
	if _, err := uuid.Parse(res.TransactionID); err != nil {
		t.Fatalf("expected uuid transaction id, got %q", res.TransactionID)
	}
}

func TestSimulatedProcessorHonoursContext(t *testing.T) {
	p := NewSimulatedProcessor(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Charge(ctx, ChargeRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
