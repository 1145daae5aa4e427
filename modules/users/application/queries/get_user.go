// Package queries contains read use cases for the users module.
// Queries return data and don't change state (CQRS pattern).
package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
)

const MessageCouldNotRetrieve = "Could not retrieve user"

// UserDTO is the wire form of a user record.
type UserDTO struct {
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	DOB       string    `json:"dob"`
	Emails    []string  `json:"emails"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetUserQuery represents a request to get a user by ID.
type GetUserQuery struct {
	UserID string
}

// GetUserHandler handles GetUserQuery.
type GetUserHandler struct {
	repo      domain.UserRepository
	validator *validation.Validator
	logger    *slog.Logger
}

func NewGetUserHandler(repo domain.UserRepository, validator *validation.Validator, logger *slog.Logger) *GetUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetUserHandler{repo: repo, validator: validator, logger: logger}
}

// Handle executes the get user query.
func (h *GetUserHandler) Handle(ctx context.Context, query GetUserQuery) (*UserDTO, error) {
	id, err := h.validator.ValidateUserID(query.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected user id", slog.String("user_id", query.UserID))
		return nil, err
	}

	user, err := h.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToUserDTO(user), nil
}

// Load fetches an already validated id. A missing user surfaces as
// UserNotFound; every other failure is logged and hidden behind a generic
// retrieval failure. Commands reuse it for existence checks and re-reads.
func (h *GetUserHandler) Load(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := h.repo.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}
	if domain.IsDomain(err) {
		h.logger.InfoContext(ctx, "user not found", slog.String("user_id", id.String()))
		return nil, err
	}
	h.logger.ErrorContext(ctx, "failed to retrieve user", slog.String("user_id", id.String()), slog.Any("error", err))
	return nil, domain.OperationFailed(MessageCouldNotRetrieve)
}

func ToUserDTO(user *domain.User) *UserDTO {
	return &UserDTO{
		UserID:    user.ID().String(),
		FirstName: user.Name().FirstName(),
		LastName:  user.Name().LastName(),
		DOB:       user.DOB().String(),
		Emails:    domain.EmailStrings(user.Emails()),
		UpdatedAt: user.UpdatedAt(),
	}
}
