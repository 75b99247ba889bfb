// Package app wires configuration, storage, domain services, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gostack-labs/storefront/internal/domain/customer"
	"github.com/gostack-labs/storefront/internal/domain/order"
	"github.com/gostack-labs/storefront/internal/domain/product"
	"github.com/gostack-labs/storefront/internal/handler"
	"github.com/gostack-labs/storefront/internal/storage/memory"
	"github.com/gostack-labs/storefront/internal/storage/postgres"
	"github.com/gostack-labs/storefront/pkg/health"
	"github.com/gostack-labs/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var (
		customerRepo customer.Repository
		productRepo  product.Repository
		orderRepo    order.Repository
	)
	switch cfg.Storage {
	case StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		customerRepo = postgres.NewCustomerRepository(pool)
		productRepo = postgres.NewProductRepository(pool)
		orderRepo = postgres.NewOrderRepository(pool)
	case StorageMemory:
		customerRepo, productRepo, orderRepo = memoryStorage(ctx, lg)
	default:
		return errors.Errorf("unknown storage driver %q", cfg.Storage)
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	orderService := order.NewService(customerRepo, productRepo, orderRepo)
	h := handler.NewHandler(orderService, productRepo, customerRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "storefront-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Wait for shutdown, flip readiness, give load balancers time to
		// drain, then stop the server.
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	return g.Wait()
}

// memoryStorage builds the in-memory repositories with a small demo catalog
// so the API is usable without a database.
func memoryStorage(ctx context.Context, lg *zap.Logger) (customer.Repository, product.Repository, order.Repository) {
	customers := memory.NewCustomerRepository()
	demo := &customer.Customer{
		ID:    "demo",
		Name:  "Demo Customer",
		Email: "demo@example.com",
	}
	if err := customers.Create(ctx, demo); err != nil {
		lg.Warn("Seed demo customer", zap.Error(err))
	}

	products := memory.NewProductRepository()
	for _, p := range []product.Product{
		{ID: "espresso", Name: "Espresso", Price: decimal.RequireFromString("2.50"), Quantity: 100},
		{ID: "latte", Name: "Latte", Price: decimal.RequireFromString("3.80"), Quantity: 100},
		{ID: "croissant", Name: "Croissant", Price: decimal.RequireFromString("2.10"), Quantity: 40},
	} {
		products.Put(p)
	}

	return customers, products, memory.NewOrderRepository()
}
