package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shophub/api/routes"
	"github.com/angelmondragon/shophub/internal/auth"
	"github.com/angelmondragon/shophub/internal/cart"
	"github.com/angelmondragon/shophub/internal/catalog"
	"github.com/angelmondragon/shophub/internal/checkout"
	"github.com/angelmondragon/shophub/internal/orders"
	product "github.com/angelmondragon/shophub/internal/products"
	"github.com/angelmondragon/shophub/internal/state"
	"github.com/angelmondragon/shophub/internal/wishlist"
	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/angelmondragon/shophub/pkg/db"
	"github.com/angelmondragon/shophub/pkg/instance"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/metrics"
	"github.com/angelmondragon/shophub/pkg/migrate"
	"github.com/angelmondragon/shophub/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.State.UsesRedis() || cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	}

	var store state.Store
	if cfg.State.UsesRedis() {
		store, err = state.NewRedisStore(redisClient, cfg.State.TTL, logg)
		if err != nil {
			return err
		}
	} else {
		store = state.NewMemoryStore()
		logg.Warn(ctx, "session state kept in memory; carts are lost on restart")
	}

	var gatherer prometheus.Gatherer
	storefrontMetrics := metrics.NewStorefront(nil)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		storefrontMetrics = metrics.NewStorefront(registry)
		gatherer = registry
	}

	catalogClient, err := catalog.NewClient(catalog.ClientParams{
		Config:  cfg.Catalog,
		Metrics: storefrontMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	var source catalog.Source = catalogClient
	if cfg.FeatureFlags.CatalogCache {
		source = catalog.NewCachedSource(catalogClient, cfg.Catalog.StaleTime)
	}

	sorter := product.NewSorter(cfg.Storefront.CollationLocale)
	browseRegistry := product.NewRegistry(cfg.Storefront.PageSize, sorter, cfg.Storefront.BrowseIdleTTL)
	go browseRegistry.Run(ctx, cfg.Storefront.BrowseIdleTTL)

	productParams := product.ServiceParams{
		Source:   source,
		Registry: browseRegistry,
		Sorter:   sorter,
		PageSize: cfg.Storefront.PageSize,
		Metrics:  storefrontMetrics,
	}
	productService, err := product.NewService(productParams)
	if err != nil {
		return err
	}
	browseService, err := product.NewBrowseService(productParams)
	if err != nil {
		return err
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:   store,
		Catalog: source,
		Pricing: cart.PricingFromConfig(cfg.Storefront),
		Coupons: cfg.Storefront.Coupons,
		Metrics: storefrontMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Store:   store,
		Catalog: source,
		Cart:    cartService,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:           orders.NewRepository(dbClient.DB()),
		Tx:             dbClient,
		DeliveryWindow: cfg.Storefront.DeliveryWindow,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:      cartService,
		Orders:    ordersService,
		Processor: checkout.NewSimulatedProcessor(cfg.Storefront.PaymentDelay),
		Metrics:   storefrontMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Store:       store,
		Credentials: catalogClient,
		TokenConfig: cfg.Auth,
		Logger:      logg,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"state":    cfg.State.Backend,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gatherer, storefrontMetrics, routes.Services{
			Products: productService,
			Browse:   browseService,
			Cart:     cartService,
			Wishlist: wishlistService,
			Checkout: checkoutService,
			Orders:   ordersService,
			Auth:     authService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
