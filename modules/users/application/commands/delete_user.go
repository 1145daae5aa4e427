package commands

import (
	"context"
	"log/slog"

	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
)

const MessageCouldNotDelete = "Could not delete user"

// DeleteUserCommand represents the intent to delete a user.
type DeleteUserCommand struct {
	UserID string
}

// DeleteUserHandler removes a user together with all of its emails.
type DeleteUserHandler struct {
	repo      domain.UserRepository
	validator *validation.Validator
	users     *queries.GetUserHandler
	publisher events.Publisher
	logger    *slog.Logger
}

func NewDeleteUserHandler(
	repo domain.UserRepository,
	validator *validation.Validator,
	users *queries.GetUserHandler,
	publisher events.Publisher,
	logger *slog.Logger,
) *DeleteUserHandler {
	return &DeleteUserHandler{
		repo:      repo,
		validator: validator,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle confirms the user exists before deleting, so a missing user
// surfaces as UserNotFound instead of a silent no-op.
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	id, err := h.validator.ValidateUserID(cmd.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected user id", slog.String("operation", "delete"), slog.String("user_id", cmd.UserID))
		return err
	}

	if _, err := h.users.Load(ctx, id); err != nil {
		return domain.Surface(err, MessageCouldNotDelete)
	}

	if err := h.repo.DeleteUser(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user", slog.String("user_id", id.String()), slog.Any("error", err))
		return domain.Surface(err, MessageCouldNotDelete)
	}
	h.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id.String()))

	publish(ctx, h.publisher, h.logger, domain.NewUserDeletedEvent(id))
	return nil
}
