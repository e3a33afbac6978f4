package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time checks.
var (
	_ domain.UnitOfWork        = (*UnitOfWork)(nil)
	_ domain.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)

// ErrUnitOfWorkClosed is returned when Commit is called on a unit of work
// that already committed or rolled back.
var ErrUnitOfWorkClosed = errors.New("unit of work is not active")

type uowState int

const (
	uowActive uowState = iota
	uowCommitted
	uowRolledBack
)

// UnitOfWorkFactory opens units of work over the store's database.
type UnitOfWorkFactory struct {
	store *Store
	pub   domain.EventPublisher
}

// NewUnitOfWorkFactory creates a factory binding the store and the
// publisher every unit of work will flush to.
func NewUnitOfWorkFactory(store *Store, pub domain.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store, pub: pub}
}

// Begin opens a transaction and returns an active unit of work whose
// repositories all share it. The transaction is exclusively owned by the
// returned value for the duration of the request.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := f.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	u := &UnitOfWork{tx: tx, pub: f.pub, state: uowActive}
	u.leads = &LeadRepository{q: tx, flush: u}
	u.customers = &CustomerRepository{q: tx, flush: u}
	u.campaigns = &CampaignRepository{q: tx, flush: u}
	return u, nil
}

// txHandle is the commit/rollback surface of *sql.Tx.
type txHandle interface {
	Commit() error
	Rollback() error
}

// pendingEvents is one repository write's event batch, held back until the
// enclosing transaction commits. agg is nil for deletion events.
type pendingEvents struct {
	agg    domain.Aggregate
	events []domain.Event
}

// UnitOfWork coordinates the three repositories over one *sql.Tx so their
// writes land or roll back together. Repositories hand their event batches
// to the unit of work instead of publishing; a successful Commit flushes
// them in write order, Rollback discards them.
type UnitOfWork struct {
	tx      txHandle
	pub     domain.EventPublisher
	state   uowState
	pending []pendingEvents

	leads     *LeadRepository
	customers *CustomerRepository
	campaigns *CampaignRepository
}

func (u *UnitOfWork) Leads() domain.LeadRepository         { return u.leads }
func (u *UnitOfWork) Customers() domain.CustomerRepository { return u.customers }
func (u *UnitOfWork) Campaigns() domain.CampaignRepository { return u.campaigns }

// afterWrite implements eventFlusher by deferring the batch until Commit.
func (u *UnitOfWork) afterWrite(_ context.Context, agg domain.Aggregate, events []domain.Event) {
	if len(events) == 0 && agg == nil {
		return
	}
	u.pending = append(u.pending, pendingEvents{agg: agg, events: events})
}

// Commit finalizes the transaction, then flushes the deferred event batches
// in the order the writes happened and clears each aggregate's buffer. The
// flush runs even when the request context is already cancelled: the events
// describe facts that are in storage now. A publish failure is logged and
// counted, never turned into an error; the commit stands.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.state != uowActive {
		return ErrUnitOfWorkClosed
	}

	if err := u.tx.Commit(); err != nil {
		u.state = uowRolledBack
		u.pending = nil
		return fmt.Errorf("committing transaction: %w", err)
	}
	u.state = uowCommitted

	flushCtx := context.WithoutCancel(ctx)
	for _, p := range u.pending {
		if len(p.events) > 0 {
			if err := u.pub.PublishMany(flushCtx, p.events); err != nil {
				slog.ErrorContext(ctx, "dropping domain events after publish failure",
					"error", err,
					"count", len(p.events),
					"aggregate_type", p.events[0].AggregateType(),
					"aggregate_id", p.events[0].AggregateID(),
				)
			}
		}
		if p.agg != nil {
			p.agg.MarkEventsCommitted()
		}
	}
	u.pending = nil
	return nil
}

// Rollback discards all writes and all deferred events, unpublished. It is
// a no-op after Commit or a previous Rollback, so callers can defer it
// unconditionally and never leak a transaction.
func (u *UnitOfWork) Rollback() error {
	if u.state != uowActive {
		return nil
	}
	u.state = uowRolledBack
	u.pending = nil
	if err := u.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}
