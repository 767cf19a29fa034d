package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/cache"
	"github.com/xenking/food-ordering/internal/domain/menu"
	"github.com/xenking/food-ordering/internal/domain/order"
	"github.com/xenking/food-ordering/internal/handler"
	"github.com/xenking/food-ordering/internal/repository"
	"github.com/xenking/food-ordering/pkg/health"
	"github.com/xenking/food-ordering/pkg/httpmiddleware"
)

const serviceName = "food-api"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	if cfg.Migrate {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		lg.Info("Migrations applied")
	}

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	healthSvc := health.New()
	healthSvc.Add(health.Readiness, "postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Repositories.
	var menuRepo menu.Repository = repository.NewMenuRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()

		healthSvc.Add(health.Readiness, "redis", 2*time.Second, func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		menuRepo = cache.NewMenu(menuRepo, rdb, cfg.MenuCacheTTL)
		lg.Info("Menu cache enabled", zap.String("redis", cfg.RedisAddr), zap.Duration("ttl", cfg.MenuCacheTTL))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret: cfg.Auth.Secret,
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return errors.Wrap(err, "create token issuer")
	}
	accounts := auth.NewService(userRepo, tokens)
	orders := order.NewService(orderRepo)

	h := handler.NewHandler(handler.Deps{
		Menu:     menuRepo,
		Orders:   orders,
		Accounts: accounts,
		Users:    userRepo,
	})

	instrument, err := httpmiddleware.Instrument(serviceName, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create metrics middleware")
	}

	router := handler.NewRouter(h, handler.RouterConfig{
		Tokens: tokens,
		Middlewares: []func(http.Handler) http.Handler{
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			instrument,
			httpmiddleware.LogRequests(),
			httpmiddleware.Labeler(),
		},
		Mount: func(r chi.Router) {
			r.Get("/livez", healthSvc.LiveEndpoint)
			r.Get("/readyz", healthSvc.ReadyEndpoint)
		},
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(
			httpmiddleware.Wrap(router,
				httpmiddleware.Recovery(),
				httpmiddleware.CORS(httpmiddleware.CORSConfig{
					Origins:          cfg.CORS.Origins,
					Headers:          []string{"Content-Type", "Authorization"},
					ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
					AllowCredentials: cfg.CORS.AllowCredentials,
					MaxAge:           86400,
				}),
				httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
					Max:    cfg.RateLimit.Max,
					Window: cfg.RateLimit.Window,
				}),
			),
			serviceName,
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithTracerProvider(m.TracerProvider()),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		defer healthSvc.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}
