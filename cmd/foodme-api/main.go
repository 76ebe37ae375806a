package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"

	"github.com/jcmexdev/foodme/internal/api/core/faults"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
	"github.com/jcmexdev/foodme/internal/api/core/services"
	"github.com/jcmexdev/foodme/internal/api/infra/adapters/metrics"
	"github.com/jcmexdev/foodme/internal/api/infra/adapters/storage"
	"github.com/jcmexdev/foodme/internal/api/infra/httpx"
	"github.com/jcmexdev/foodme/internal/config"
	"github.com/jcmexdev/foodme/internal/pkg/cache"
	"github.com/jcmexdev/foodme/internal/pkg/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:   "foodme-api",
		Usage:  "FoodMe ordering API with trace-correlated logs and fault injection",
		Flags:  config.Flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("foodme-api exited", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.FromCLI(c)
	if err != nil {
		return err
	}

	logger := telemetry.InitLogger(telemetry.LoggerConfig{
		Service: cfg.ServiceName,
		Version: cfg.ServiceVersion,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
	}

	shutdownTracer, err := telemetry.SetupTracer(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("failed to initialise tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	meters, err := telemetry.SetupMeter(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("failed to initialise meter: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := meters.Shutdown(shutdownCtx); err != nil {
			logger.Error("meter shutdown error", "error", err)
		}
	}()

	largeOrders, err := metrics.NewLargeOrders(meters.Provider)
	if err != nil {
		return err
	}

	catalog, closeCatalog, err := buildCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	tp := otel.GetTracerProvider()
	inj := faults.New(cfg.Faults, faults.NewSource(cfg.Seed))

	handler := httpx.NewHandler(
		services.NewOrderService(tp, inj, largeOrders, logger),
		services.NewPaymentService(tp, inj, logger),
		catalog,
		logger,
	)
	router := httpx.NewRouter(handler, httpx.RouterConfig{
		ServiceName:    cfg.ServiceName,
		StaticDir:      cfg.StaticDir,
		TestDir:        cfg.TestDir,
		Metrics:        meters.Handler(),
		TracerProvider: tp,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started",
			"port", cfg.Port,
			"host", "0.0.0.0",
			"latency_mode", string(cfg.Faults.LatencyMode),
			"seeded", cfg.Seed != 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// buildCatalog loads the restaurant data and menus and, when a Redis address
// is configured, puts the cache in front of single restaurant lookups.
func buildCatalog(cfg config.Config, logger *slog.Logger) (*services.CatalogService, func(), error) {
	mem, err := storage.LoadRestaurants(cfg.DataFile)
	if err != nil {
		return nil, nil, err
	}
	menus, err := storage.LoadMenus(cfg.MenusFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Loaded catalogue",
		"restaurants", mem.Len(),
		"menuItems", menus.Len(),
		"dataFile", cfg.DataFile,
		"menusFile", cfg.MenusFile,
	)

	var store ports.RestaurantStore = mem
	closeFn := func() {}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
		store = storage.NewCachedStore(mem, rc, cfg.CacheTTL, logger)
		closeFn = func() {
			if err := rc.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}
		logger.Info("restaurant cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	}

	return services.NewCatalogService(store, menus, logger), closeFn, nil
}
