package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/port"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/config"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/database"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/kafka"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/logger"
	redisinfra "github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/redis"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
	postgresrepo "github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository/postgres"
	redisrepo "github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository/redis"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/handlers"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/middleware"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/routes"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/usecase"
)

// App wires configuration, infrastructure, services, and the HTTP server.
type App struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafka.Producer
	server   *http.Server
}

// New builds the application from configuration. Construction fails fast on
// unreachable Postgres or Redis and on a missing JWT signing secret. Kafka is
// optional: with no brokers configured the notifier degrades to a logging
// stub so local development does not require a broker.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	issuer, err := security.NewSessionIssuer(cfg.JWT.SigningSecret, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init session issuer: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	var (
		producer *kafka.Producer
		notifier port.NotificationPublisher
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka producer: %w", err)
		}
		notifier = kafka.NewNotifier(producer, cfg.Kafka.EmailTopic, log)
	} else {
		log.Warn("no kafka brokers configured, notifications will only be logged")
		notifier = kafka.NewStubNotifier(log)
	}

	users := postgresrepo.NewUserRepository(pool)
	rateLimits := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "auth:reset-rate",
		TTL:       cfg.RateLimit.WindowDuration,
	})

	validator := security.DefaultPasswordValidator()

	credentials := usecase.NewCredentialService(cfg, users, hasher, notifier, rateLimits, validator, log)
	auth := usecase.NewAuthService(users, hasher, issuer, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		if producer != nil {
			_ = producer.Close()
		}
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	health := handlers.NewHealthHandler(
		handlers.WithReadinessCheck("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		}),
		handlers.WithReadinessCheck("redis", redisClient.HealthCheck),
	)

	engine := routes.Register(routes.Dependencies{
		Logger:      log,
		Issuer:      issuer,
		Auth:        handlers.NewAuthHandler(auth),
		Password:    handlers.NewPasswordHandler(credentials),
		CurrentUser: handlers.NewCurrentUserHandler(auth),
		Health:      health,
		Metrics:     metrics,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		server:   server,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails. Shutdown drains in-flight requests before returning.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return <-errCh
}

// Close releases all infrastructure resources.
func (a *App) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}

// Logger exposes the application logger for callers that report startup
// failures after New succeeded.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
