package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rai/user-records-go/modules/shared/events"
	"github.com/rai/user-records-go/modules/shared/events/contracts"
)

// UserLifecycleHandler writes one audit log line per user lifecycle event.
// It runs after the originating write has committed.
type UserLifecycleHandler struct {
	logger *slog.Logger
}

func NewUserLifecycleHandler(logger *slog.Logger) *UserLifecycleHandler {
	return &UserLifecycleHandler{logger: logger}
}

func (h *UserLifecycleHandler) Handle(ctx context.Context, event events.Event) error {
	attrs := []slog.Attr{
		slog.String("event_id", event.EventID()),
		slog.String("event_type", event.EventType().String()),
		slog.String("user_id", event.AggregateID()),
		slog.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case contracts.UserCreatedEvent:
		attrs = append(attrs, slog.Any("emails", e.Emails))
	case contracts.UserUpdatedEvent:
		attrs = append(attrs, slog.Any("added_emails", e.AddedEmails))
	case contracts.UserDeletedEvent:
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	h.logger.LogAttrs(ctx, slog.LevelInfo, "user lifecycle", attrs...)
	return nil
}
