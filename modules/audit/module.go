// Package audit records user lifecycle changes published by the users module.
package audit

import (
	"log/slog"

	"github.com/rai/user-records-go/modules/audit/application/eventhandlers"
	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/shared/events/contracts"
)

// Module represents the audit module entry point.
type Module struct{}

type Config struct {
	EventSubscriber events.Subscriber
	Logger          *slog.Logger
}

// New initializes the audit module and subscribes to user lifecycle events.
func New(cfg Config) (*Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	handler := eventhandlers.NewUserLifecycleHandler(logger.With("module", "audit"))

	for _, eventType := range []events.EventType{
		contracts.UserCreatedEventType,
		contracts.UserUpdatedEventType,
		contracts.UserDeletedEventType,
	} {
		if err := cfg.EventSubscriber.Subscribe(eventType, handler); err != nil {
			return nil, err
		}
	}

	return &Module{}, nil
}
