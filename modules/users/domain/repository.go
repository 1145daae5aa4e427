package domain

import "context"

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// UserRepository is the storage port for user records. Implementations keep
// the Users row and its UserEmails rows consistent: every write is a single
// atomic transaction.
type UserRepository interface {
	// CreateUser generates a new id and writes the user row and one email row
	// per profile email atomically.
	CreateUser(ctx context.Context, profile Profile) (UserID, error)

	// GetUser reads the user row and its email rows.
	// Returns ErrUserNotFound if the user row is absent.
	GetUser(ctx context.Context, id UserID) (*User, error)

	// UpdateUser rewrites the scalar fields, stamps updatedAt and inserts
	// profile.Emails as new email rows. Existing email rows are untouched.
	// Returns ErrUserNotFound if the user row is absent.
	UpdateUser(ctx context.Context, id UserID, profile Profile) error

	// DeleteUser removes the user row and every email row it owns.
	DeleteUser(ctx context.Context, id UserID) error
}
