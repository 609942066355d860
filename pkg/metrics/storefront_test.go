package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStorefrontMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)

	m.ObserveCatalog("products", 20*time.Millisecond, nil)
	m.ObserveCatalog("products", 10*time.Millisecond, errors.New("boom"))
	m.IncCartMutation("add")
	m.IncCartMutation("add")
	m.IncCheckout("")
	m.IncLoadMoreSkipped()
	m.ObserveHTTP("GET", "/api/v1/cart", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.catalogRequests.WithLabelValues("products", "failure")); got != 1 {
		t.Fatalf("expected one failed catalog request, got %v", got)
	}
	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("add")); got != 2 {
		t.Fatalf("expected two add mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkouts.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty outcome to be normalized, got %v", got)
	}
	if got := testutil.ToFloat64(m.loadMoreSkipped); got != 1 {
		t.Fatalf("expected one skipped load-more, got %v", got)
	}
	if got := testutil.CollectAndCount(m.httpDuration); got != 1 {
		t.Fatalf("expected one http series, got %d", got)
	}
}

func TestStorefrontNilSafe(t *testing.T) {
	var m *Storefront
	m.ObserveCatalog("products", time.Second, nil)
	m.IncCartMutation("add")
	m.IncCheckout("approved")
	m.IncLoadMoreSkipped()

	empty := NewStorefront(nil)
	empty.IncCartMutation("add")
}
