// Package commands contains write use cases for the users module.
package commands

import (
	"context"
	"log/slog"

	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
)

const MessageCouldNotCreate = "Could not create user"

// CreateUserCommand represents the intent to create a new user.
type CreateUserCommand struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	DOB       string   `json:"dob"`
	Emails    []string `json:"emails"`
}

// CreateUserHandler handles the CreateUserCommand.
type CreateUserHandler struct {
	repo      domain.UserRepository
	validator *validation.Validator
	users     *queries.GetUserHandler
	publisher events.Publisher
	logger    *slog.Logger
}

func NewCreateUserHandler(
	repo domain.UserRepository,
	validator *validation.Validator,
	users *queries.GetUserHandler,
	publisher events.Publisher,
	logger *slog.Logger,
) *CreateUserHandler {
	return &CreateUserHandler{
		repo:      repo,
		validator: validator,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle validates the command, stores the user with all its emails in one
// transaction and returns the stored record as re-read from the store.
func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*queries.UserDTO, error) {
	profile, err := h.validator.ValidateCreate(validation.UserFields{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		DOB:       cmd.DOB,
		Emails:    cmd.Emails,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "rejected user data", slog.String("operation", "create"))
		return nil, err
	}

	id, err := h.repo.CreateUser(ctx, profile)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		return nil, domain.Surface(err, MessageCouldNotCreate)
	}
	h.logger.InfoContext(ctx, "user and emails created", slog.String("user_id", id.String()), slog.Int("email_count", len(profile.Emails)))

	user, err := h.users.Load(ctx, id)
	if err != nil {
		return nil, domain.Surface(err, MessageCouldNotCreate)
	}

	publish(ctx, h.publisher, h.logger, domain.NewUserCreatedEvent(user))
	return queries.ToUserDTO(user), nil
}

// publish delivers evts after the write has committed. Failures are logged
// only; the write has already succeeded.
func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, evts ...events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		logger.WarnContext(ctx, "failed to publish user events", slog.Any("error", err))
	}
}
