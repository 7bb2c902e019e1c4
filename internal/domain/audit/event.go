// Package audit defines the structured events emitted by the
// federated-login flow for security review and observability.
package audit

import (
	"context"
	"time"
)

// EventType enumerates the auditable moments of the flow.
type EventType string

const (
	EventInitiate EventType = "INITIATE"
	EventSuccess  EventType = "SUCCESS"
	EventError    EventType = "ERROR"
	EventLink     EventType = "LINK"
	EventUnlink   EventType = "UNLINK"
)

// Event is one audit record. AccountSID and ExternalSubjectID are empty
// when the flow failed before an account was resolved.
type Event struct {
	Type              EventType
	Provider          string
	CorrelationID     string
	AccountSID        string
	ExternalSubjectID string
	Context           map[string]any
	Error             string
	OccurredAt        time.Time
}

// Sink accepts audit events. Implementations must not fail the calling
// operation: recording is best-effort from the flow's point of view.
type Sink interface {
	Record(ctx context.Context, event Event)
}
