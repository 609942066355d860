package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shophub/api/controllers"
	cartcontrollers "github.com/angelmondragon/shophub/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/shophub/api/controllers/orders"
	"github.com/angelmondragon/shophub/api/middleware"
	"github.com/angelmondragon/shophub/internal/auth"
	"github.com/angelmondragon/shophub/internal/cart"
	checkoutsvc "github.com/angelmondragon/shophub/internal/checkout"
	"github.com/angelmondragon/shophub/internal/orders"
	product "github.com/angelmondragon/shophub/internal/products"
	"github.com/angelmondragon/shophub/internal/wishlist"
	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/angelmondragon/shophub/pkg/db"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/metrics"
	"github.com/angelmondragon/shophub/pkg/redis"
)

// Services bundles the domain services the HTTP surface exposes.
type Services struct {
	Products product.Service
	Browse   product.BrowseService
	Cart     cart.Service
	Wishlist wishlist.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Auth     auth.Service
}

// NewRouter wires middleware and every storefront route. dbP and redisClient may be nil;
// without redis the idempotency and auth rate-limit guards are skipped.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	storefrontMetrics *metrics.Storefront,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Session(logg),
		middleware.Logging(logg, storefrontMetrics),
	)

	checks := []controllers.ReadinessCheck{}
	if dbP != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "db", Pinger: dbP})
	}
	if redisClient != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, checks, logg))
	})
	if gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := func(r chi.Router) chi.Router { return r }
	loginGuard, registerGuard := idempotent, idempotent
	if redisClient != nil {
		idem := middleware.Idempotency(redisClient, middleware.IdempotencyOptions{RequireKey: cfg.FeatureFlags.RequireIdemKey}, logg)
		idempotent = func(r chi.Router) chi.Router { return r.With(idem) }

		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		)
		registerPolicy := middleware.NewAuthRateLimitPolicy(
			"register",
			cfg.AuthRateLimit.RegisterWindow,
			cfg.AuthRateLimit.RegisterIPLimit,
			cfg.AuthRateLimit.RegisterEmailLimit,
		)
		loginGuard = func(r chi.Router) chi.Router {
			return r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg))
		}
		registerGuard = func(r chi.Router) chi.Router {
			return r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), idem)
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(svcs.Products, logg))
		r.Get("/products/{productId}", controllers.ProductGet(svcs.Products, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Products, logg))
		r.Get("/categories/{category}/products", controllers.CategoryProducts(svcs.Products, logg))

		r.Route("/browse", func(r chi.Router) {
			r.Get("/", controllers.BrowseView(svcs.Browse, logg))
			r.Post("/load", controllers.BrowseLoad(svcs.Browse, logg))
			r.Post("/categories/toggle", controllers.BrowseToggleCategory(svcs.Browse, logg))
			r.Put("/price-range", controllers.BrowseSetPriceRange(svcs.Browse, logg))
			r.Put("/rating", controllers.BrowseSetRating(svcs.Browse, logg))
			r.Put("/search", controllers.BrowseSetSearch(svcs.Browse, logg))
			r.Put("/sort", controllers.BrowseSetSort(svcs.Browse, logg))
			r.Post("/load-more", controllers.BrowseLoadMore(svcs.Browse, logg))
			r.Delete("/filters", controllers.BrowseClearFilters(svcs.Browse, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(svcs.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(svcs.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(svcs.Cart, logg))
			r.Put("/items/{productId}", cartcontrollers.CartSetQuantity(svcs.Cart, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(svcs.Cart, logg))
			r.Post("/items/{productId}/increment", cartcontrollers.CartIncrement(svcs.Cart, logg))
			r.Post("/items/{productId}/decrement", cartcontrollers.CartDecrement(svcs.Cart, logg))
			r.Post("/coupon", cartcontrollers.CartApplyCoupon(svcs.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(svcs.Wishlist, logg))
			r.Delete("/", controllers.WishlistClear(svcs.Wishlist, logg))
			r.Post("/toggle", controllers.WishlistToggle(svcs.Wishlist, logg))
			r.Post("/items", controllers.WishlistAddItem(svcs.Wishlist, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemoveItem(svcs.Wishlist, logg))
			r.Post("/items/{productId}/move-to-cart", controllers.WishlistMoveToCart(svcs.Wishlist, logg))
		})

		idempotent(r).Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(svcs.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(svcs.Orders, logg))
			idempotent(r).Post("/{orderId}/cancel", ordercontrollers.Cancel(svcs.Orders, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			loginGuard(r).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			registerGuard(r).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
			r.Get("/me", controllers.AuthMe(svcs.Auth, logg))
		})
	})

	return r
}
