package commands

import (
	"context"
	"log/slog"

	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
)

const MessageCouldNotUpdate = "Could not update user"

// UpdateUserCommand replaces a user's profile. Emails is the full desired
// set and must contain every email the user already has.
type UpdateUserCommand struct {
	UserID    string   `json:"userId"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	DOB       string   `json:"dob"`
	Emails    []string `json:"emails"`
}

// UpdateUserHandler handles the UpdateUserCommand.
type UpdateUserHandler struct {
	repo      domain.UserRepository
	validator *validation.Validator
	users     *queries.GetUserHandler
	publisher events.Publisher
	logger    *slog.Logger
}

func NewUpdateUserHandler(
	repo domain.UserRepository,
	validator *validation.Validator,
	users *queries.GetUserHandler,
	publisher events.Publisher,
	logger *slog.Logger,
) *UpdateUserHandler {
	return &UpdateUserHandler{
		repo:      repo,
		validator: validator,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *UpdateUserHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*queries.UserDTO, error) {
	id, profile, err := h.validator.ValidateUpdate(cmd.UserID, validation.UserFields{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		DOB:       cmd.DOB,
		Emails:    cmd.Emails,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "rejected user data", slog.String("operation", "update"), slog.String("user_id", cmd.UserID))
		return nil, err
	}

	current, err := h.users.Load(ctx, id)
	if err != nil {
		return nil, domain.Surface(err, MessageCouldNotUpdate)
	}

	added, err := current.EmailsToAdd(profile.Emails)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected email removal", slog.String("user_id", id.String()))
		return nil, err
	}
	profile.Emails = added

	if err := h.repo.UpdateUser(ctx, id, profile); err != nil {
		h.logger.ErrorContext(ctx, "failed to update user", slog.String("user_id", id.String()), slog.Any("error", err))
		return nil, domain.Surface(err, MessageCouldNotUpdate)
	}
	h.logger.InfoContext(ctx, "user updated", slog.String("user_id", id.String()), slog.Int("added_emails", len(added)))

	updated, err := h.users.Load(ctx, id)
	if err != nil {
		return nil, domain.Surface(err, MessageCouldNotUpdate)
	}

	publish(ctx, h.publisher, h.logger, domain.NewUserUpdatedEvent(updated, added))
	return queries.ToUserDTO(updated), nil
}
