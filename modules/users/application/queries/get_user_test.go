package queries_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/application/validation"
	"github.com/rai/user-records-go/modules/users/domain"
)

// --- Mocks ---

type mockUserRepository struct {
	getUserFn func(ctx context.Context, id domain.UserID) (*domain.User, error)
}

func (m *mockUserRepository) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return m.getUserFn(ctx, id)
}

func (m *mockUserRepository) CreateUser(ctx context.Context, profile domain.Profile) (domain.UserID, error) {
	return domain.UserID{}, errors.New("not implemented")
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, id domain.UserID, profile domain.Profile) error {
	return errors.New("not implemented")
}

func (m *mockUserRepository) DeleteUser(ctx context.Context, id domain.UserID) error {
	return errors.New("not implemented")
}

func newHandler(repo domain.UserRepository) *queries.GetUserHandler {
	return queries.NewGetUserHandler(repo, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- Tests ---

func TestGetUserHandler_Handle_Success(t *testing.T) {
	id, _ := domain.ParseUserID("123e4567-e89b-12d3-a456-426614174000")
	updatedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	repo := &mockUserRepository{
		getUserFn: func(ctx context.Context, got domain.UserID) (*domain.User, error) {
			if got != id {
				t.Errorf("expected id %s, got %s", id, got)
			}
			return domain.Reconstitute(id, domain.NewName("John", "Doe"), "1990-01-01",
				[]domain.Email{"b@example.com", "a@example.com"}, updatedAt), nil
		},
	}

	dto, err := newHandler(repo).Handle(context.Background(), queries.GetUserQuery{UserID: id.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dto.UserID != id.String() || dto.FirstName != "John" || dto.LastName != "Doe" || dto.DOB != "1990-01-01" {
		t.Errorf("unexpected dto: %+v", dto)
	}
	if len(dto.Emails) != 2 || dto.Emails[0] != "a@example.com" || dto.Emails[1] != "b@example.com" {
		t.Errorf("expected sorted emails, got %v", dto.Emails)
	}
	if !dto.UpdatedAt.Equal(updatedAt) {
		t.Errorf("expected updatedAt %v, got %v", updatedAt, dto.UpdatedAt)
	}
}

func TestGetUserHandler_Handle_InvalidUserID(t *testing.T) {
	repo := &mockUserRepository{
		getUserFn: func(ctx context.Context, id domain.UserID) (*domain.User, error) {
			t.Fatal("GetUser should not be called for an invalid id")
			return nil, nil
		},
	}

	_, err := newHandler(repo).Handle(context.Background(), queries.GetUserQuery{UserID: "invalid-id"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err.Error() != "Invalid user id" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestGetUserHandler_Handle_UserNotFound(t *testing.T) {
	repo := &mockUserRepository{
		getUserFn: func(ctx context.Context, id domain.UserID) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := newHandler(repo).Handle(context.Background(), queries.GetUserQuery{UserID: domain.NewUserID().String()})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserHandler_Handle_StoreFailure(t *testing.T) {
	repo := &mockUserRepository{
		getUserFn: func(ctx context.Context, id domain.UserID) (*domain.User, error) {
			return nil, errors.New("deadline exceeded talking to store")
		},
	}

	_, err := newHandler(repo).Handle(context.Background(), queries.GetUserQuery{UserID: domain.NewUserID().String()})
	if !errors.Is(err, domain.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if err.Error() != queries.MessageCouldNotRetrieve {
		t.Errorf("expected generic message, got %q", err.Error())
	}
}
