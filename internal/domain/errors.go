package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no aggregate matches an (id, tenant) pair.
// Cross-tenant reads deliberately collapse into this error so callers can
// never distinguish "does not exist" from "belongs to someone else".
var ErrNotFound = errors.New("aggregate not found")

// BusinessRuleViolation signals that a guarding specification rejected a
// business method. The aggregate is left unchanged and nothing is emitted.
// Recoverable: the API layer surfaces rule and details to the caller.
type BusinessRuleViolation struct {
	Rule    string
	Details map[string]any
}

func (e *BusinessRuleViolation) Error() string {
	return fmt.Sprintf("business rule %q violated", e.Rule)
}

// ConcurrencyError signals that a conditional write matched zero rows: the
// stored version moved since this aggregate was read. Recoverable by
// re-reading and reapplying the business method.
type ConcurrencyError struct {
	AggregateType   string
	AggregateID     string
	ExpectedVersion int
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("%s %s: stale version, expected stored version %d",
		e.AggregateType, e.AggregateID, e.ExpectedVersion)
}

// TenantIsolationError signals an attempt to write an aggregate under a
// tenant it does not belong to. Always fatal to the request and logged as a
// security-relevant event; the owning tenant is intentionally not carried.
type TenantIsolationError struct {
	AggregateType string
	AggregateID   string
	RequestTenant string
}

func (e *TenantIsolationError) Error() string {
	return fmt.Sprintf("cross-tenant access to %s %s rejected for tenant %s",
		e.AggregateType, e.AggregateID, e.RequestTenant)
}
