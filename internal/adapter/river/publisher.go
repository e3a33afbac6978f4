package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs is the serialized form of a domain event. River stores it as
// JSON in its job table; the worker gets the full fact and never needs to
// query the aggregate back.
type EventJobArgs struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	TenantID      string            `json:"tenant_id"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Data          map[string]any    `json:"data,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "domain.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs. The
// jobs live in the same SQLite file as the aggregates, so an enqueued event
// survives a process crash; a crash between the aggregate commit and the
// enqueue still drops it. A durable outbox would move the enqueue into the
// unit of work's transaction via InsertManyTx.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues one domain event.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	_, err := p.client.Insert(ctx, jobArgs(event), nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}

// PublishMany enqueues a batch in submission order, preserving the
// per-aggregate ordering the batch arrived with.
func (p *Publisher) PublishMany(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	params := make([]river.InsertManyParams, len(events))
	for i, ev := range events {
		params[i] = river.InsertManyParams{Args: jobArgs(ev)}
	}

	if _, err := p.client.InsertMany(ctx, params); err != nil {
		return fmt.Errorf("enqueuing %d event jobs: %w", len(events), err)
	}
	return nil
}

func jobArgs(ev domain.Event) EventJobArgs {
	return EventJobArgs{
		EventID:       ev.ID().String(),
		EventType:     ev.Type(),
		AggregateID:   ev.AggregateID(),
		AggregateType: ev.AggregateType(),
		TenantID:      ev.TenantID(),
		OccurredAt:    ev.OccurredAt(),
		Data:          ev.Data(),
		Metadata:      ev.Metadata(),
	}
}
