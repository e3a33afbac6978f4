package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable record of something that has already happened to one
// aggregate. Events are buffered on the aggregate until the enclosing write
// commits, then handed to the EventPublisher and discarded; the aggregate's
// current-state row remains the system of record.
type Event struct {
	id            uuid.UUID
	eventType     string
	aggregateID   string
	aggregateType string
	tenantID      string
	occurredAt    time.Time
	data          map[string]any
	metadata      map[string]string
}

// NewEvent constructs an event with a fresh id and the current UTC time.
// The data map is copied so later mutation by the caller cannot leak in.
func NewEvent(eventType, aggregateID, aggregateType, tenantID string, data map[string]any) Event {
	return Event{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		tenantID:      tenantID,
		occurredAt:    time.Now().UTC(),
		data:          maps.Clone(data),
	}
}

// WithMetadata returns a copy of the event carrying an extra metadata entry,
// e.g. causation or correlation ids. The receiver is left untouched.
func (e Event) WithMetadata(key, value string) Event {
	md := maps.Clone(e.metadata)
	if md == nil {
		md = make(map[string]string, 1)
	}
	md[key] = value
	e.metadata = md
	return e
}

func (e Event) ID() uuid.UUID         { return e.id }
func (e Event) Type() string          { return e.eventType }
func (e Event) AggregateID() string   { return e.aggregateID }
func (e Event) AggregateType() string { return e.aggregateType }
func (e Event) TenantID() string      { return e.tenantID }
func (e Event) OccurredAt() time.Time { return e.occurredAt }

// Data returns a copy of the structured payload.
func (e Event) Data() map[string]any { return maps.Clone(e.data) }

// Metadata returns a copy of the free-form metadata.
func (e Event) Metadata() map[string]string { return maps.Clone(e.metadata) }
