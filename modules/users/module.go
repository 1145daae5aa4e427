// Package users provides user record management.
// This file defines the module's public API - the single interface
// that other modules and the server use to interact with the users bounded context.
package users

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rai/user-records-go/internal/platform/metrics"
	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/users/application/commands"
	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
	httphandler "github.com/rai/user-records-go/modules/users/infrastructure/http"
	"github.com/rai/user-records-go/modules/users/infrastructure/persistence"
)

const tracerName = "github.com/rai/user-records-go/modules/users"

type (
	CreateUserRequest = commands.CreateUserCommand
	UpdateUserRequest = commands.UpdateUserCommand
	User              = queries.UserDTO
)

// Service is the set of user operations. Every error it returns is a
// *domain.Error.
type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Module is the public API for the users bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: domain events published after each write
type Module interface {
	Service
	RegisterRoutes(r chi.Router)
}

// Config holds the module configuration.
type Config struct {
	// Repository defaults to an in-memory store.
	Repository     domain.UserRepository
	EventPublisher events.Publisher
	// Metrics is optional.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

type module struct {
	createUserHandler *commands.CreateUserHandler
	updateUserHandler *commands.UpdateUserHandler
	deleteUserHandler *commands.DeleteUserHandler
	getUserHandler    *queries.GetUserHandler

	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New creates a new users module with all dependencies wired.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "users")

	repository := cfg.Repository
	if repository == nil {
		repository = persistence.NewInMemoryRepository()
	}

	validator := validation.New()

	// Wire up query handlers
	getUserHandler := queries.NewGetUserHandler(repository, validator, logger)

	// Wire up command handlers
	createUserHandler := commands.NewCreateUserHandler(repository, validator, getUserHandler, cfg.EventPublisher, logger)
	updateUserHandler := commands.NewUpdateUserHandler(repository, validator, getUserHandler, cfg.EventPublisher, logger)
	deleteUserHandler := commands.NewDeleteUserHandler(repository, validator, getUserHandler, cfg.EventPublisher, logger)

	return &module{
		createUserHandler: createUserHandler,
		updateUserHandler: updateUserHandler,
		deleteUserHandler: deleteUserHandler,
		getUserHandler:    getUserHandler,
		metrics:           cfg.Metrics,
		tracer:            otel.Tracer(tracerName),
	}
}

func (m *module) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user *User
	err := m.observe(ctx, "create", "", func(ctx context.Context) error {
		var err error
		user, err = m.createUserHandler.Handle(ctx, req)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("user.id", user.UserID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if m.metrics != nil {
		m.metrics.IncrementUsersCreated()
	}
	return user, nil
}

func (m *module) GetUser(ctx context.Context, userID string) (*User, error) {
	var user *User
	err := m.observe(ctx, "get", userID, func(ctx context.Context) error {
		var err error
		user, err = m.getUserHandler.Handle(ctx, queries.GetUserQuery{UserID: userID})
		return err
	})
	return user, err
}

func (m *module) UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error) {
	var user *User
	err := m.observe(ctx, "update", req.UserID, func(ctx context.Context) error {
		var err error
		user, err = m.updateUserHandler.Handle(ctx, req)
		return err
	})
	return user, err
}

func (m *module) DeleteUser(ctx context.Context, userID string) error {
	return m.observe(ctx, "delete", userID, func(ctx context.Context) error {
		return m.deleteUserHandler.Handle(ctx, commands.DeleteUserCommand{UserID: userID})
	})
}

func (m *module) RegisterRoutes(r chi.Router) {
	httphandler.NewHandler(m).RegisterRoutes(r)
}

// observe runs fn inside a span and records its outcome, which is "ok" or
// the error kind.
func (m *module) observe(ctx context.Context, operation, userID string, fn func(ctx context.Context) error) error {
	ctx, span := m.tracer.Start(ctx, "users."+operation)
	defer span.End()
	if userID != "" {
		span.SetAttributes(attribute.String("user.id", userID))
	}

	start := time.Now()
	err := fn(ctx)

	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if m.metrics != nil {
		m.metrics.ObserveOperation(operation, outcome, start)
	}
	return err
}
