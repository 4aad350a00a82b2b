package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/gs-sport/storefront/internal/events"
)

// StartAuditWorker subscribes an audit logger to every domain event.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			audit.Info("domain event",
				zap.String("event_id", e.ID),
				zap.String("type", string(e.Type)),
				zap.String("resource_id", e.ResourceID),
				zap.String("actor_id", e.Actor.SubjectID),
				zap.String("actor_role", string(e.Actor.Role)),
				zap.Time("at", e.Timestamp),
				zap.Any("payload", e.Payload),
			)
			return nil
		})
	}
}
