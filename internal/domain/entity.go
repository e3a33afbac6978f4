package domain

import (
	"slices"
	"time"
)

// Entity carries identity, tenant ownership and the optimistic-lock version.
// Fields are unexported: state changes only through aggregate methods.
type Entity struct {
	id        string
	tenantID  string
	createdAt time.Time
	updatedAt time.Time

	// version is the in-memory version, bumped once per business mutation.
	// loadedVersion is the version the row had when it was read (or last
	// written); it is the predicate value for the optimistic-lock UPDATE.
	version       int
	loadedVersion int
	persisted     bool
}

func (e *Entity) ID() string           { return e.id }
func (e *Entity) TenantID() string     { return e.tenantID }
func (e *Entity) Version() int         { return e.version }
func (e *Entity) CreatedAt() time.Time { return e.createdAt }
func (e *Entity) UpdatedAt() time.Time { return e.updatedAt }

// Equal reports identity equality: two entities are the same if their ids
// match, regardless of field values.
func (e *Entity) Equal(other *Entity) bool {
	return other != nil && e.id == other.id
}

// IsPersisted reports whether a row for this entity exists in storage.
// Fresh aggregates are inserted; persisted ones are updated under the
// version predicate.
func (e *Entity) IsPersisted() bool { return e.persisted }

// ExpectedVersion is the stored version a conditional update must match.
func (e *Entity) ExpectedVersion() int { return e.loadedVersion }

// MarkPersisted records a successful write. Called only by repositories.
func (e *Entity) MarkPersisted() {
	e.persisted = true
	e.loadedVersion = e.version
}

// bumpVersion advances the version and refreshes the update timestamp.
// Aggregate methods call this exactly once per business mutation; methods
// that only read never call it.
func (e *Entity) bumpVersion() {
	e.version++
	e.updatedAt = time.Now().UTC()
}

// AggregateRoot is the base for the consistency boundary of a cluster of
// state. It buffers domain events recorded by business methods until a
// repository confirms the write, and tracks whether uncommitted changes
// exist. Embed it in concrete aggregates.
type AggregateRoot struct {
	Entity
	aggregateType string
	events        []Event
	dirty         bool
}

// newAggregateRoot builds the base for a fresh aggregate: version 1, no
// stored row, empty event buffer.
func newAggregateRoot(aggregateType, id, tenantID string) AggregateRoot {
	now := time.Now().UTC()
	return AggregateRoot{
		Entity: Entity{
			id:        id,
			tenantID:  tenantID,
			createdAt: now,
			updatedAt: now,
			version:   1,
		},
		aggregateType: aggregateType,
	}
}

// rehydrateRoot builds the base for an aggregate loaded from storage.
// The event buffer starts empty; version and timestamps come from the row.
func rehydrateRoot(aggregateType, id, tenantID string, version int, createdAt, updatedAt time.Time) AggregateRoot {
	return AggregateRoot{
		Entity: Entity{
			id:            id,
			tenantID:      tenantID,
			createdAt:     createdAt,
			updatedAt:     updatedAt,
			version:       version,
			loadedVersion: version,
			persisted:     true,
		},
		aggregateType: aggregateType,
	}
}

func (a *AggregateRoot) AggregateType() string { return a.aggregateType }

// record buffers an event describing a state change of this aggregate.
// Nothing is published from here; publication happens after commit.
func (a *AggregateRoot) record(eventType string, data map[string]any) {
	a.events = append(a.events, NewEvent(eventType, a.id, a.aggregateType, a.tenantID, data))
	a.dirty = true
}

// DomainEvents returns a snapshot of the buffered, unpublished events.
// Callers get a copy and cannot mutate the buffer.
func (a *AggregateRoot) DomainEvents() []Event {
	return slices.Clone(a.events)
}

// MarkEventsCommitted empties the buffer and clears the dirty flag. Called
// only by repositories after a verified successful write.
func (a *AggregateRoot) MarkEventsCommitted() {
	a.events = nil
	a.dirty = false
}

// IsDirty reports whether the aggregate holds uncommitted changes. A
// mutation that emitted no event still counts if it set the flag.
func (a *AggregateRoot) IsDirty() bool {
	return a.dirty || len(a.events) > 0
}

// markDirty flags a mutation that did not itself emit an event. Such
// mutations are a modeling smell but must still reach storage.
func (a *AggregateRoot) markDirty() { a.dirty = true }
