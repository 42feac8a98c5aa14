// Package app wires together all dependencies and runs the marketplace server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dougajmcdonald/mates-rates/internal/auth"
	"github.com/dougajmcdonald/mates-rates/internal/config"
	"github.com/dougajmcdonald/mates-rates/internal/event"
	handler "github.com/dougajmcdonald/mates-rates/internal/handler/http"
	"github.com/dougajmcdonald/mates-rates/internal/invite"
	"github.com/dougajmcdonald/mates-rates/internal/provider"
	"github.com/dougajmcdonald/mates-rates/internal/provider/mock"
	"github.com/dougajmcdonald/mates-rates/internal/provider/stripe"
	"github.com/dougajmcdonald/mates-rates/internal/repository/postgres"
	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/migrations"
	"github.com/dougajmcdonald/mates-rates/pkg/database"
	"github.com/dougajmcdonald/mates-rates/pkg/health"
	pkgkafka "github.com/dougajmcdonald/mates-rates/pkg/kafka"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
	"github.com/dougajmcdonald/mates-rates/pkg/tracing"
)

// App holds the long-lived components of the marketplace server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "mates-rates",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "mates-rates")

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Redis only backs single-use invite enforcement; without it invites
	// stay valid for their whole lifetime and may be redeemed repeatedly.
	var redisClient *redis.Client
	var registry invite.Registry
	if cfg.InviteSingleUse {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		registry = invite.NewRedisRegistry(redisClient)
		logger.Info("single-use invites enabled", slog.String("redis", cfg.Redis().Addr()))
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	var paymentProvider provider.Provider
	switch cfg.PaymentProvider {
	case "stripe":
		paymentProvider = stripe.NewProvider(stripe.Config{
			SecretKey: cfg.StripeSecretKey,
			BaseURL:   cfg.StripeAPIBaseURL,
		}, logger)
	default:
		paymentProvider = mock.NewProvider()
	}
	logger.Info("payment provider configured", slog.String("provider", paymentProvider.Name()))

	// Build the dependency graph.
	userRepo := postgres.NewUserRepository(pool)
	graphRepo := postgres.NewSocialGraphRepository(pool)
	listingRepo := postgres.NewListingRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	inviteTokens := invite.NewTokens(cfg.InviteTokenSecret, cfg.InviteTokenTTL)
	verifier := auth.NewVerifier(cfg.IdentityTokenSecret)

	userService := service.NewUserService(userRepo, logger)
	socialService := service.NewSocialService(graphRepo, inviteTokens, registry, eventProducer, logger)
	listingService := service.NewListingService(listingRepo, graphRepo, logger)
	offerService := service.NewOfferService(offerRepo, listingRepo, graphRepo, eventProducer, logger)
	paymentService := service.NewPaymentService(offerRepo, userRepo, paymentProvider, eventProducer, logger,
		cfg.OnboardingReturnURL, cfg.OnboardingRefreshURL)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(handler.Deps{
		Users:          userService,
		Social:         socialService,
		Listings:       listingService,
		Offers:         offerService,
		Payments:       paymentService,
		TokenValidator: verifier.Verify,
		WebhookSecret:  cfg.StripeWebhookSecret,
		Health:         healthHandler,
		CORS:           corsConfig,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: drain in-flight HTTP
// requests, flush pending spans, then close the Kafka producer, Redis, and
// the PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
