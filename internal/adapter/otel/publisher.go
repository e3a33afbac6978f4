package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry
// tracing and counts published and failed events. Publish failures are
// swallowed at the repository boundary, so the counter is the only durable
// signal that events were dropped.
type TracingPublisher struct {
	next      domain.EventPublisher
	tracer    trace.Tracer
	published metric.Int64Counter
	failed    metric.Int64Counter
}

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	meter := otel.Meter(tracerName)

	published, _ := meter.Int64Counter("leadiq.events.published",
		metric.WithDescription("Domain events handed to the publisher."))
	failed, _ := meter.Int64Counter("leadiq.events.publish_failures",
		metric.WithDescription("Domain events the publisher failed to accept."))

	return &TracingPublisher{
		next:      next,
		tracer:    otel.Tracer(tracerName),
		published: published,
		failed:    failed,
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", event.Type()),
			attribute.String("aggregate.type", event.AggregateType()),
			attribute.String("aggregate.id", event.AggregateID()),
			attribute.String("tenant.id", event.TenantID()),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event)
	p.count(ctx, span, 1, err)
	return err
}

func (p *TracingPublisher) PublishMany(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "EventPublisher.PublishMany",
		trace.WithAttributes(
			attribute.Int("event.count", len(events)),
			attribute.String("aggregate.type", events[0].AggregateType()),
			attribute.String("aggregate.id", events[0].AggregateID()),
			attribute.String("tenant.id", events[0].TenantID()),
		),
	)
	defer span.End()

	err := p.next.PublishMany(ctx, events)
	p.count(ctx, span, int64(len(events)), err)
	return err
}

func (p *TracingPublisher) count(ctx context.Context, span trace.Span, n int64, err error) {
	if err != nil {
		p.failed.Add(ctx, n)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	p.published.Add(ctx, n)
}
