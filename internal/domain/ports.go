package domain

import "context"

// Aggregate is the closed contract every aggregate root satisfies. It is
// what repositories and the event flush path need, nothing more.
type Aggregate interface {
	ID() string
	TenantID() string
	AggregateType() string
	Version() int
	IsDirty() bool
	IsPersisted() bool
	ExpectedVersion() int
	MarkPersisted()
	DomainEvents() []Event
	MarkEventsCommitted()
}

// Repository is the tenant-scoped persistence contract, parameterized per
// aggregate variant and its list filter. Every operation takes the tenant
// explicitly; the core never infers tenant identity.
//
// Save persists current-state fields. Updates are conditioned on the stored
// version matching ExpectedVersion; a mismatch yields ConcurrencyError and
// no partial write. After a successful write buffered events flush to the
// configured EventPublisher and the buffer clears. Delete synthesizes a
// deletion event through the same flush path and reports false, not an
// error, when nothing matched.
type Repository[T Aggregate, F any] interface {
	GetByID(ctx context.Context, id, tenantID string) (T, error)
	List(ctx context.Context, tenantID string, filter F) ([]T, error)
	Save(ctx context.Context, tenantID string, aggregate T) error
	Delete(ctx context.Context, id, tenantID string) (bool, error)
	Exists(ctx context.Context, id, tenantID string) (bool, error)
}

// LeadFilter holds optional criteria for listing leads.
type LeadFilter struct {
	Status *LeadStatus
	Limit  int
	Offset int
}

// CustomerFilter holds optional criteria for listing customers.
type CustomerFilter struct {
	Tier   *CustomerTier
	Limit  int
	Offset int
}

// CampaignFilter holds optional criteria for listing campaigns.
type CampaignFilter struct {
	Status *CampaignStatus
	Limit  int
	Offset int
}

type (
	LeadRepository     = Repository[*Lead, LeadFilter]
	CustomerRepository = Repository[*Customer, CustomerFilter]
	CampaignRepository = Repository[*Campaign, CampaignFilter]
)

// EventPublisher delivers committed domain events to subscribers.
// Implementations must preserve submission order within one call (and so
// per aggregate) but guarantee nothing across aggregates. Publication is
// fire-and-forget relative to the caller's transaction: failures are
// logged and counted, never turned into a rollback.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	PublishMany(ctx context.Context, events []Event) error
}

// TransitionValidator arbitrates campaign lifecycle transitions.
type TransitionValidator interface {
	Apply(ctx context.Context, current CampaignStatus, trigger CampaignTrigger) (CampaignStatus, error)
}

// UnitOfWork scopes one transaction across the three repositories so that
// their writes land or roll back together. Buffered events flush only after
// a successful Commit; Rollback discards them unpublished. Rollback after
// Commit (or a second Rollback) is a no-op, so it is safe to defer.
type UnitOfWork interface {
	Leads() LeadRepository
	Customers() CustomerRepository
	Campaigns() CampaignRepository
	Commit(ctx context.Context) error
	Rollback() error
}

// UnitOfWorkFactory opens a fresh transactional scope. The returned unit of
// work exclusively owns its transaction; it must never be shared across
// concurrent requests.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
