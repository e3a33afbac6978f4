package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadiq/internal/domain"
)

const tracerName = "github.com/neomorfeo/leadiq/internal/adapter/otel"

// TracingRepository wraps a domain.Repository with OpenTelemetry tracing.
// One generic decorator serves all three aggregate repositories; spans are
// prefixed with the repository name passed at construction. Expected
// domain outcomes (not found, version conflict) are not marked as span
// errors; they are normal control flow.
type TracingRepository[T domain.Aggregate, F any] struct {
	next   domain.Repository[T, F]
	name   string
	tracer trace.Tracer
}

// NewTracingRepository creates a tracing decorator around the given
// repository. name becomes the span prefix, e.g. "LeadRepository".
func NewTracingRepository[T domain.Aggregate, F any](name string, next domain.Repository[T, F]) *TracingRepository[T, F] {
	return &TracingRepository[T, F]{
		next:   next,
		name:   name,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository[T, F]) GetByID(ctx context.Context, id, tenantID string) (T, error) {
	ctx, span := r.tracer.Start(ctx, r.name+".GetByID",
		trace.WithAttributes(
			attribute.String("aggregate.id", id),
			attribute.String("tenant.id", tenantID),
		),
	)
	defer span.End()

	agg, err := r.next.GetByID(ctx, id, tenantID)
	r.recordOutcome(span, err)
	return agg, err
}

func (r *TracingRepository[T, F]) List(ctx context.Context, tenantID string, filter F) ([]T, error) {
	ctx, span := r.tracer.Start(ctx, r.name+".List",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	aggs, err := r.next.List(ctx, tenantID, filter)
	if err != nil {
		r.recordOutcome(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(aggs)))
	}
	return aggs, err
}

func (r *TracingRepository[T, F]) Save(ctx context.Context, tenantID string, aggregate T) error {
	ctx, span := r.tracer.Start(ctx, r.name+".Save",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregate.ID()),
			attribute.String("tenant.id", tenantID),
			attribute.Int("aggregate.version", aggregate.Version()),
			attribute.Int("aggregate.events", len(aggregate.DomainEvents())),
		),
	)
	defer span.End()

	err := r.next.Save(ctx, tenantID, aggregate)
	r.recordOutcome(span, err)
	return err
}

func (r *TracingRepository[T, F]) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, r.name+".Delete",
		trace.WithAttributes(
			attribute.String("aggregate.id", id),
			attribute.String("tenant.id", tenantID),
		),
	)
	defer span.End()

	deleted, err := r.next.Delete(ctx, id, tenantID)
	if err != nil {
		r.recordOutcome(span, err)
	} else {
		span.SetAttributes(attribute.Bool("aggregate.deleted", deleted))
	}
	return deleted, err
}

func (r *TracingRepository[T, F]) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, r.name+".Exists",
		trace.WithAttributes(
			attribute.String("aggregate.id", id),
			attribute.String("tenant.id", tenantID),
		),
	)
	defer span.End()

	found, err := r.next.Exists(ctx, id, tenantID)
	r.recordOutcome(span, err)
	return found, err
}

func (r *TracingRepository[T, F]) recordOutcome(span trace.Span, err error) {
	if err == nil {
		return
	}

	var concurrency *domain.ConcurrencyError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		span.SetAttributes(attribute.Bool("aggregate.found", false))
	case errors.As(err, &concurrency):
		span.SetAttributes(attribute.Bool("aggregate.version_conflict", true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
