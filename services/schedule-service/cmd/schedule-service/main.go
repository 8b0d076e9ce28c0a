package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shearbook/shearbook/libs/auth"
	"github.com/shearbook/shearbook/libs/config"
	"github.com/shearbook/shearbook/libs/db"
	"github.com/shearbook/shearbook/libs/httpx"
	"github.com/shearbook/shearbook/libs/kafkax"
	otelx "github.com/shearbook/shearbook/libs/otel"
	"github.com/shearbook/shearbook/libs/runtime"
	"github.com/shearbook/shearbook/services/schedule-service/internal/handlers"
	"github.com/shearbook/shearbook/services/schedule-service/internal/identity"
	"github.com/shearbook/shearbook/services/schedule-service/internal/outbox"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store/memory"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store/postgres"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "schedule-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}
	var jwksClient *auth.JWKSClient
	if jwksURL := config.String("JWKS_URL", ""); jwksURL != "" {
		jwksClient = auth.NewJWKSClient(jwksURL, config.Duration("JWKS_TTL", 10*time.Minute))
	}

	var readyChecks []runtime.ReadyCheck
	var dataSource store.DataSource

	switch backend := config.String("DATA_SOURCE", "postgres"); backend {
	case "memory":
		dataSource = memory.NewSeeded(memory.FixtureGenerator{
			Seed:     int64(config.Int("FIXTURE_SEED", 1)),
			TenantID: config.String("FIXTURE_TENANT_ID", "tenant-demo"),
			BarberID: config.String("FIXTURE_BARBER_ID", "barber-demo"),
		})
		logger.Info("using in-memory fixture data source")
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			panic(err)
		}
		pool, err := db.Open(ctx, dbURL, db.PoolOptions{
			MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
			MinConns: int32(config.Int("DB_MIN_CONNS", 1)),
		})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})

		outboxRepo := outbox.NewRepository(pool)
		dataSource = postgres.New(pool, outboxRepo)

		if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
			readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
			publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
				Brokers:   brokers,
				PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
				BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
			})
			go publisher.Run(ctx)
		}
	default:
		logger.Error("unknown DATA_SOURCE", "value", backend)
		panic("unknown DATA_SOURCE: " + backend)
	}

	handler := handlers.New(dataSource, logger, validator.New())

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handler.Register(mux, identity.Middleware(jwtSecret, jwksClient))

	rateLimit := config.Int("RATE_LIMIT", 120)
	rateWindow := config.Duration("RATE_WINDOW", time.Minute)
	var rateLimiter httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()
		rateLimiter = httpx.NewRedisRateLimiter(rdb, rateLimit, rateWindow, service).
			Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	} else {
		rateLimiter = httpx.NewRateLimiter(rateLimit, rateWindow).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 15*time.Second)),
		rateLimiter,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "schedule")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
