package events

import (
	"time"

	"github.com/gs-sport/storefront/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventUserRoleChanged    EventType = "user_role_changed"
	EventUserDeleted        EventType = "user_deleted"
)

// AllEventTypes lists every event type, for subscribers interested in all of them.
var AllEventTypes = []EventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventUserRoleChanged,
	EventUserDeleted,
}

// Actor identifies who triggered an event.
type Actor struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// ActorOf converts a request identity.
func ActorOf(identity domain.Identity) Actor {
	return Actor{SubjectID: identity.SubjectID, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Email string `json:"email"`
}
