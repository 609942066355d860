package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records catalog, cart, browse and checkout activity.
// A nil *Storefront is valid and records nothing.
type Storefront struct {
	catalogDuration *prometheus.HistogramVec
	catalogRequests *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
	loadMoreSkipped prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	catalogDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shophub",
		Name:      "catalog_request_duration_seconds",
		Help:      "Duration of upstream catalog requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	catalogRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shophub",
		Name:      "catalog_requests_total",
		Help:      "Upstream catalog requests by outcome.",
	}, []string{"endpoint", "outcome"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shophub",
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shophub",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	loadMoreSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shophub",
		Name:      "browse_load_more_skipped_total",
		Help:      "Load-more triggers dropped because another was in flight.",
	})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shophub",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of API requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(catalogDuration, catalogRequests, cartMutations, checkouts, loadMoreSkipped, httpDuration)
	return &Storefront{
		catalogDuration: catalogDuration,
		catalogRequests: catalogRequests,
		cartMutations:   cartMutations,
		checkouts:       checkouts,
		loadMoreSkipped: loadMoreSkipped,
		httpDuration:    httpDuration,
	}
}

// ObserveCatalog records one upstream catalog call.
func (s *Storefront) ObserveCatalog(endpoint string, duration time.Duration, err error) {
	if s == nil || s.catalogDuration == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	s.catalogDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.catalogRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (s *Storefront) IncCartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (s *Storefront) IncCheckout(outcome string) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (s *Storefront) IncLoadMoreSkipped() {
	if s == nil || s.loadMoreSkipped == nil {
		return
	}
	s.loadMoreSkipped.Inc()
}

// ObserveHTTP records one served API request. route should be the router pattern, not the raw path.
func (s *Storefront) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if s == nil || s.httpDuration == nil {
		return
	}
	s.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
