// Package contracts defines public event contracts for inter-module communication.
// Modules should import event types from here, NOT from other module's domain packages.
package contracts

import "github.com/rai/user-records-go/modules/shared/events"

// User module event types.
const (
	UserCreatedEventType events.EventType = "users.UserCreated"
	UserUpdatedEventType events.EventType = "users.UserUpdated"
	UserDeletedEventType events.EventType = "users.UserDeleted"
)

// UserCreatedEvent is published after a user and its emails are committed.
type UserCreatedEvent struct {
	events.BaseEvent
	UserID string   `json:"userId"`
	Emails []string `json:"emails"`
}

// UserUpdatedEvent is published after an update commits. AddedEmails lists
// only the emails the update inserted.
type UserUpdatedEvent struct {
	events.BaseEvent
	UserID      string   `json:"userId"`
	AddedEmails []string `json:"addedEmails"`
}

// UserDeletedEvent is published after a user and all its emails are removed.
type UserDeletedEvent struct {
	events.BaseEvent
	UserID string `json:"userId"`
}
