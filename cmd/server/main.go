// Package main is the entry point for the user records service.
// It wires together all modules and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rai/user-records-go/internal/platform/config"
	"github.com/rai/user-records-go/internal/platform/eventbus"
	"github.com/rai/user-records-go/internal/platform/httpserver"
	"github.com/rai/user-records-go/internal/platform/metrics"
	"github.com/rai/user-records-go/internal/platform/postgres"
	platformredis "github.com/rai/user-records-go/internal/platform/redis"
	"github.com/rai/user-records-go/internal/platform/spanner"
	"github.com/rai/user-records-go/modules/audit"
	"github.com/rai/user-records-go/modules/users"
	"github.com/rai/user-records-go/modules/users/domain"
	"github.com/rai/user-records-go/modules/users/infrastructure/persistence"
)

const healthTimeout = 2 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	logger.Info("starting user records service", slog.String("store_backend", cfg.StoreBackend))

	ctx := context.Background()
	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Initialize event bus (for inter-module communication)
	eventBus := eventbus.New(logger)
	m := metrics.New()

	// Initialize modules
	// Each module subscribes to events it cares about internally
	if _, err := audit.New(audit.Config{EventSubscriber: eventBus, Logger: logger}); err != nil {
		return fmt.Errorf("init audit module: %w", err)
	}
	usersModule := users.New(users.Config{
		Repository:     st.repo,
		EventPublisher: eventBus,
		Metrics:        m,
		Logger:         logger,
	})

	router := buildRouter(logger, m, st.health, usersModule)

	server := httpserver.New(httpserver.Config{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, router, logger)

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server...", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return nil
}

// store is the configured user repository with its health check and release
// functions.
type store struct {
	repo   domain.UserRepository
	health func(ctx context.Context) error
	close  func()
}

// buildStore connects to the configured backend.
func buildStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.StoreBackend {
	case config.BackendSpanner:
		spannerCfg := spanner.Config{
			ProjectID:  cfg.Spanner.ProjectID,
			InstanceID: cfg.Spanner.InstanceID,
			DatabaseID: cfg.Spanner.DatabaseID,
		}
		client, err := spanner.NewClient(ctx, spannerCfg)
		if err != nil {
			return store{}, fmt.Errorf("create spanner client: %w", err)
		}
		logger.Info("connected to spanner", slog.String("dsn", spannerCfg.DSN()))
		return store{
			repo:   persistence.NewSpannerRepository(client),
			health: func(ctx context.Context) error { return spanner.Ping(ctx, client) },
			close:  client.Close,
		}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return store{}, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("connected to postgres")
		return store{
			repo:   persistence.NewPostgresRepository(db),
			health: db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil

	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return store{}, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis", slog.String("key_prefix", cfg.Redis.KeyPrefix))
		return store{
			repo:   persistence.NewRedisRepository(client.Client, persistence.WithKeyPrefix(cfg.Redis.KeyPrefix)),
			health: client.Health,
			close:  func() { _ = client.Close() },
		}, nil

	default:
		logger.Warn("using in-memory store; data is lost on restart")
		return store{
			repo:   persistence.NewInMemoryRepository(),
			health: func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}
}

// buildRouter creates the main HTTP router with all module handlers.
func buildRouter(logger *slog.Logger, m *metrics.Metrics, health func(ctx context.Context) error, usersModule users.Module) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httpserver.Recovery(logger))
	r.Use(httpserver.Logging(logger))

	// Health check endpoint; reports the store's reachability.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := health(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	// Each module registers its own routes (same pattern as event subscriptions)
	usersModule.RegisterRoutes(r)

	return r
}
