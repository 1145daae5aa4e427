package domain

import (
	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/shared/events/contracts"
)

// Domain events for the users bounded context. The payload types are the
// public contracts so other modules never import this package.

func NewUserCreatedEvent(user *User) contracts.UserCreatedEvent {
	return contracts.UserCreatedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserCreatedEventType, user.ID().String()),
		UserID:    user.ID().String(),
		Emails:    EmailStrings(user.Emails()),
	}
}

func NewUserUpdatedEvent(user *User, added []Email) contracts.UserUpdatedEvent {
	return contracts.UserUpdatedEvent{
		BaseEvent:   events.NewBaseEvent(contracts.UserUpdatedEventType, user.ID().String()),
		UserID:      user.ID().String(),
		AddedEmails: EmailStrings(added),
	}
}

func NewUserDeletedEvent(id UserID) contracts.UserDeletedEvent {
	return contracts.UserDeletedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, id.String()),
		UserID:    id.String(),
	}
}
