package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Audit event types published by the domain services on every mutation.
const (
	OrganizationCreated     = "organization.created"
	OrganizationUpdated     = "organization.updated"
	OrganizationDeactivated = "organization.deactivated"
	OrganizationDeleted     = "organization.deleted"

	DepartmentCreated     = "department.created"
	DepartmentUpdated     = "department.updated"
	DepartmentDeactivated = "department.deactivated"
	DepartmentDeleted     = "department.deleted"

	UserCreated           = "user.created"
	UserUpdated           = "user.updated"
	UserPerformanceRated  = "user.performance_rated"
	UserDeactivated       = "user.deactivated"
	UserDeleted           = "user.deleted"
)

// NewAuditEvent builds a mutation event carrying the acted-on entity id and
// the identity that performed the change.
func NewAuditEvent(eventType string, entityID int64, actorID int64) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"entity_id": entityID,
			"actor_id":  actorID,
		},
	}
}

// RegisterAuditLogger subscribes a logging handler for every audit event type,
// giving a durable trail of who changed what without touching the hot path.
func RegisterAuditLogger(bus *EventBus, logger *slog.Logger) {
	types := []string{
		OrganizationCreated, OrganizationUpdated, OrganizationDeactivated, OrganizationDeleted,
		DepartmentCreated, DepartmentUpdated, DepartmentDeactivated, DepartmentDeleted,
		UserCreated, UserUpdated, UserPerformanceRated, UserDeactivated, UserDeleted,
	}

	handler := func(ctx context.Context, event Event) error {
		payload, ok := event.Payload().(map[string]interface{})
		if !ok {
			return fmt.Errorf("unexpected payload type for event %s", event.EventID())
		}
		logger.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"entity_id", payload["entity_id"],
			"actor_id", payload["actor_id"])
		return nil
	}

	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}
