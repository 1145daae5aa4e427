package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidUserID indicates the user ID format is invalid.
var ErrInvalidUserID = errors.New("invalid user ID format")

// UserID is the store-generated identifier of a user.
type UserID struct {
	value string
}

// NewUserID generates a random (v4) identifier. Only stores call this.
func NewUserID() UserID {
	return UserID{value: uuid.NewString()}
}

func ParseUserID(s string) (UserID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return UserID{}, ErrInvalidUserID
	}
	return UserID{value: s}, nil
}

func (id UserID) String() string { return id.value }
func (id UserID) IsZero() bool   { return id.value == "" }
