package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docelucro/backend-doce/internal/auth"
	"github.com/docelucro/backend-doce/internal/cashbook"
	"github.com/docelucro/backend-doce/internal/catalog"
	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/config"
	"github.com/docelucro/backend-doce/internal/events"
	"github.com/docelucro/backend-doce/internal/export"
	"github.com/docelucro/backend-doce/internal/health"
	"github.com/docelucro/backend-doce/internal/lock"
	"github.com/docelucro/backend-doce/internal/obs"
	"github.com/docelucro/backend-doce/internal/orders"
	"github.com/docelucro/backend-doce/internal/ratelimit"
	"github.com/docelucro/backend-doce/internal/report"
	"github.com/docelucro/backend-doce/internal/resilience"
	"github.com/docelucro/backend-doce/internal/sales"
	"github.com/docelucro/backend-doce/internal/security"
	"github.com/docelucro/backend-doce/internal/settings"
	"github.com/docelucro/backend-doce/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsCSV), nil)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "doce-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The document lives on local disk; Postgres mirrors it when
	// configured so a reinstall can restore the books.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse database config")
		}
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = "doce-api"

		pool, err = pgxpool.NewWithConfig(startCtx, poolConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		if err := pool.Ping(startCtx); err != nil {
			logger.Fatal().Err(err).Msg("ping database")
		}
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	} else {
		logger.Warn().Msg("DATABASE_URL not set, remote document sync disabled")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		if err := redisClient.Ping(startCtx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set, caching and idempotency keys disabled")
	}

	storeCfg := store.Config{
		Local:  &store.FileStore{Path: cfg.DocPath},
		UserID: cfg.UserID,
		Logger: logger,
	}
	if pool != nil {
		storeCfg.Remote = &store.PostgresRemote{Pool: pool}
		storeCfg.Debounce = cfg.SyncDebounce
		storeCfg.Breaker = resilience.NewBreaker(3, 30*time.Second).
			WithTarget("postgres").
			WithLogger(logger)
	}
	if redisClient != nil {
		storeCfg.Locker = &lock.Locker{R: redisClient}
	}
	st, err := store.Open(startCtx, storeCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open document store")
	}

	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: logger},
		obs.EventCounter{},
	}}

	validate := validator.New()

	authService, err := auth.NewService(auth.Config{
		PINHash:   cfg.PINHash,
		Secret:    cfg.JWTSecret,
		UserID:    cfg.UserID,
		AccessTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := auth.Handler{Service: authService}
	authMiddleware := auth.Middleware{Service: authService}

	loginLimiter, err := ratelimit.NewLoginLimiter(redisClient, cfg.LoginRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise login rate limiter")
	}
	loginLimit := ratelimit.Middleware{Limiter: loginLimiter}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	catalogHandler := catalog.NewHandler(&catalog.Service{Store: st, Validate: validate})
	salesHandler := sales.NewHandler(&sales.Service{Store: st, Bus: bus, FeeBps: cfg.CardFeeBps})
	ordersHandler := orders.NewHandler(&orders.Service{Store: st, Bus: bus, Validate: validate})
	cashHandler := cashbook.NewHandler(&cashbook.Service{Store: st, Bus: bus})
	reportHandler := report.NewHandler(&report.Service{Store: st, R: redisClient, TTL: cfg.ReportCacheTTL})
	settingsHandler := settings.NewHandler(&settings.Service{Store: st})
	exportHandler := export.Handler{Store: st}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.Headers{Enable: cfg.SecurityHeaders}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{
		Checker: readinessChecker{db: pool, redis: redisClient},
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(loginLimit.Handler).Post("/auth/login", authHandler.Login)

		v.Group(func(p chi.Router) {
			p.Use(authMiddleware.RequireAuth)

			p.Get("/products", catalogHandler.List)
			p.Get("/products/preview", catalogHandler.Preview)
			p.Post("/products", catalogHandler.Create)
			p.Put("/products/{id}", catalogHandler.Update)
			p.Delete("/products/{id}", catalogHandler.Delete)

			p.Get("/sales", salesHandler.List)
			p.Get("/sales/draft", salesHandler.Quote)
			p.Put("/sales/draft/items/{productId}", salesHandler.SetQty)
			p.Patch("/sales/draft", salesHandler.Patch)
			p.Delete("/sales/draft", salesHandler.Clear)
			p.With(idem.Middleware).Post("/sales", salesHandler.Finalize)

			p.Get("/orders", ordersHandler.List)
			p.With(idem.Middleware).Post("/orders", ordersHandler.Create)
			p.Put("/orders/{id}", ordersHandler.Update)
			p.With(idem.Middleware).Post("/orders/{id}/deposit", ordersHandler.RegisterDeposit)
			p.With(idem.Middleware).Post("/orders/{id}/deliver", ordersHandler.Deliver)
			p.Post("/orders/{id}/cancel", ordersHandler.Cancel)
			p.Delete("/orders/{id}", ordersHandler.Delete)

			p.Get("/cash", cashHandler.List)
			p.With(idem.Middleware).Post("/cash", cashHandler.Append)

			p.Get("/report", reportHandler.Overview)
			p.Get("/report/summary", reportHandler.Summary)
			p.Get("/report/cash", reportHandler.Cash)
			p.Get("/report/goal", reportHandler.Goal)
			p.Get("/report/receivables", reportHandler.Receivable)
			p.Get("/report/top-products", reportHandler.Top)

			p.Get("/settings", settingsHandler.Get)
			p.Put("/settings", settingsHandler.Update)

			p.Get("/export/sales.csv", exportHandler.SalesCSV)
			p.Get("/export/backup.json", exportHandler.BackupJSON)
			p.Post("/document/reset", exportHandler.Reset)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	health.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("flush document store")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
