package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/LibraryGo/internal/config"
	"github.com/utafrali/LibraryGo/internal/event"
	"github.com/utafrali/LibraryGo/internal/graphql"
	handler "github.com/utafrali/LibraryGo/internal/handler/http"
	"github.com/utafrali/LibraryGo/internal/realtime"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/internal/repository/memory"
	"github.com/utafrali/LibraryGo/internal/repository/postgres"
	"github.com/utafrali/LibraryGo/internal/service"
	"github.com/utafrali/LibraryGo/pkg/database"
	"github.com/utafrali/LibraryGo/pkg/health"
	pkgkafka "github.com/utafrali/LibraryGo/pkg/kafka"
	"github.com/utafrali/LibraryGo/pkg/tracing"
)

const startupTimeout = time.Minute

// App wires together all dependencies and runs the library service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	stopRouter     context.CancelFunc
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Migrations are applied before the HTTP server is built.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ready := false
	defer func() {
		if !ready {
			_ = a.release()
		}
	}()

	var err error
	a.shutdownTracer, err = tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	// Redis backs the subscription stream and the relay's dedupe store.
	a.redis, err = database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	var notifier service.Notifier
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		notifier = event.NewProducer(a.producer, nil, logger)

		relay := realtime.NewRelay(a.redis, logger)
		a.consumers = relay.Consumers(cfg.KafkaBrokers, cfg.KafkaConsumerGroup)
		logger.Info("kafka initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("consumer_count", len(a.consumers)),
		)
	} else {
		logger.Info("events disabled, notifications are not published")
	}

	// Build the dependency graph.
	catalog := service.New(store, notifier, logger)
	schema, err := graphql.NewSchema(graphql.NewResolver(catalog, logger))
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	if a.pool != nil {
		pool := a.pool
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}
	healthHandler.Register("redis", func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// HTTP router.
	routerCtx, stopRouter := context.WithCancel(context.Background())
	a.stopRouter = stopRouter
	stream := realtime.NewStream(a.redis, realtime.DefaultHeartbeat, logger)
	router := handler.NewRouter(routerCtx, handler.Routes{
		GraphQL:       graphql.NewHandler(schema, catalog, cfg.GraphQLMaxBodyBytes, logger),
		Subscriptions: stream,
		Health:        healthHandler,
	}, handler.OptionsFromConfig(cfg), logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	a.httpServer.RegisterOnShutdown(stream.Close)

	ready = true
	return a, nil
}

// openStore returns the catalog store selected by STORAGE_BACKEND. The
// Postgres backend connects, migrates and exports pool metrics.
func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	cfg := a.cfg
	if cfg.StorageBackend == config.StorageMemory {
		a.logger.Info("in-memory catalog store initialized")
		return memory.NewStore(), nil
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "library"); err != nil {
		a.logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), a.logger)

	return postgres.NewStore(pool), nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	// Start Kafka consumers in background goroutines.
	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer %s: %w", c.Topic(), err)
			}
		}()
	}

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("component failed, shutting down", slog.String("error", runErr.Error()))
	}

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components: the HTTP server first, then the
// consumers, the producer, Redis, the database pool and the tracer.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	errs = append(errs, a.release())

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// release closes everything NewApp opened, in dependency order. It is safe
// on a partially built App.
func (a *App) release() error {
	var errs []error

	if a.stopRouter != nil {
		a.stopRouter()
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
