package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// EventWorker processes domain event jobs from the River queue. For now it
// logs the event; future versions will dispatch to webhooks, scoring
// pipelines, or notification systems. Jobs can be retried, so downstream
// handlers must treat delivery as at-least-once.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing domain event",
		"event_id", job.Args.EventID,
		"event_type", job.Args.EventType,
		"aggregate_type", job.Args.AggregateType,
		"aggregate_id", job.Args.AggregateID,
		"tenant_id", job.Args.TenantID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
