// Package sqlite persists aggregates as current-state rows keyed by
// (id, tenant_id), with a version column as the optimistic-lock predicate.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/leadiq/internal/domain"
)

const timeFormat = time.RFC3339Nano

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the same repository code serves standalone use and the unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// eventFlusher receives an aggregate's buffered events after its row was
// written. The immediate flusher publishes right away; the unit of work
// defers until commit. agg is nil for synthesized deletion events.
type eventFlusher interface {
	afterWrite(ctx context.Context, agg domain.Aggregate, events []domain.Event)
}

// immediateFlusher publishes events as soon as the standalone repository's
// own write succeeds. A publisher failure is logged and the events are
// dropped; the committed write stands. A crash between write and publish
// loses events the same way. That is the accepted gap of commit-then-publish.
type immediateFlusher struct {
	pub domain.EventPublisher
}

func (f *immediateFlusher) afterWrite(ctx context.Context, agg domain.Aggregate, events []domain.Event) {
	if len(events) == 0 {
		if agg != nil {
			agg.MarkEventsCommitted()
		}
		return
	}

	// The events describe a write that already committed, so a cancelled
	// request context must not abort the flush.
	if err := f.pub.PublishMany(context.WithoutCancel(ctx), events); err != nil {
		slog.ErrorContext(ctx, "dropping domain events after publish failure",
			"error", err,
			"count", len(events),
			"aggregate_type", events[0].AggregateType(),
			"aggregate_id", events[0].AggregateID(),
		)
	}
	if agg != nil {
		agg.MarkEventsCommitted()
	}
}

// guardTenant rejects writes for aggregates owned by a different tenant.
// Logged at warn: a mismatch here means a caller bug or a forged request.
func guardTenant(ctx context.Context, agg domain.Aggregate, tenantID string) error {
	if agg.TenantID() == tenantID {
		return nil
	}
	slog.WarnContext(ctx, "cross-tenant write rejected",
		"aggregate_type", agg.AggregateType(),
		"aggregate_id", agg.ID(),
		"request_tenant", tenantID,
	)
	return &domain.TenantIsolationError{
		AggregateType: agg.AggregateType(),
		AggregateID:   agg.ID(),
		RequestTenant: tenantID,
	}
}

// deleteRow runs a tenant-scoped delete and, when a row matched, routes a
// synthesized deletion event through the same flush path as saves.
func deleteRow(ctx context.Context, q querier, flush eventFlusher, table, aggregateType, id, tenantID string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	ev := domain.NewEvent(aggregateType+"Deleted", id, aggregateType, tenantID, nil)
	flush.afterWrite(ctx, nil, []domain.Event{ev})
	return true, nil
}

// existsRow runs a tenant-scoped existence check. No event side effects.
func existsRow(ctx context.Context, q querier, table, id, tenantID string) (bool, error) {
	var found int
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ? AND tenant_id = ?)`,
		id, tenantID,
	).Scan(&found)
	if err != nil {
		return false, err
	}
	return found == 1, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}
