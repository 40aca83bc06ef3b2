package events

import (
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQuerySubmitted     EventType = "query_submitted"
	EventQueryStatusChanged EventType = "query_status_changed"
	EventQueryAssigned      EventType = "query_assigned"
	EventAccountRegistered  EventType = "account_registered"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	QueryID   int64       `json:"query_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// QuerySubmittedPayload payload.
type QuerySubmittedPayload struct {
	Heading  string               `json:"heading"`
	Priority domain.QueryPriority `json:"priority"`
}

// QueryStatusChangedPayload payload.
type QueryStatusChangedPayload struct {
	OldStatus domain.QueryStatus `json:"old_status"`
	NewStatus domain.QueryStatus `json:"new_status"`
}

// QueryAssignedPayload payload.
type QueryAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}
