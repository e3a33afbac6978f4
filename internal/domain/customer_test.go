package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/leadiq/internal/domain"
)

func newTestCustomer(t *testing.T, tier domain.CustomerTier) *domain.Customer {
	t.Helper()
	customer, err := domain.NewCustomer("customer-1", "tenant-a",
		domain.Profile{Email: "jane@acme.com", Name: "Jane", Company: "Acme"}, tier)
	if err != nil {
		t.Fatalf("NewCustomer: %v", err)
	}
	return customer
}

func TestNewCustomer(t *testing.T) {
	customer := newTestCustomer(t, domain.TierStarter)

	if customer.Tier() != domain.TierStarter {
		t.Errorf("Tier = %q, want %q", customer.Tier(), domain.TierStarter)
	}
	if customer.LifetimeValueCents() != 0 {
		t.Errorf("LifetimeValueCents = %d, want 0", customer.LifetimeValueCents())
	}
	if customer.Version() != 1 {
		t.Errorf("Version = %d, want 1", customer.Version())
	}

	events := customer.DomainEvents()
	if len(events) != 1 || events[0].Type() != "CustomerCreated" {
		t.Fatalf("events = %v, want one CustomerCreated", events)
	}
}

func TestNewCustomer_EmptyTierDefaultsToFree(t *testing.T) {
	customer := newTestCustomer(t, "")
	if customer.Tier() != domain.TierFree {
		t.Errorf("Tier = %q, want %q", customer.Tier(), domain.TierFree)
	}
}

func TestNewCustomer_UnknownTier(t *testing.T) {
	_, err := domain.NewCustomer("customer-1", "tenant-a",
		domain.Profile{Email: "jane@acme.com"}, "platinum")

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if violation.Rule != "customer.unknown_tier" {
		t.Errorf("rule = %q, want %q", violation.Rule, "customer.unknown_tier")
	}
}

func TestNewCustomer_RequiresEmail(t *testing.T) {
	_, err := domain.NewCustomer("customer-1", "tenant-a", domain.Profile{Name: "No Email"}, domain.TierFree)
	if err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestCustomer_RecordPurchase(t *testing.T) {
	customer := newTestCustomer(t, domain.TierFree)
	customer.MarkEventsCommitted()

	if err := customer.RecordPurchase(25_000); err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	if err := customer.RecordPurchase(5_000); err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}

	if customer.LifetimeValueCents() != 30_000 {
		t.Errorf("LifetimeValueCents = %d, want 30000", customer.LifetimeValueCents())
	}
	if customer.Version() != 3 {
		t.Errorf("Version = %d, want 3", customer.Version())
	}

	events := customer.DomainEvents()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if got := events[1].Data()["lifetime_value_cents"]; got != int64(30_000) {
		t.Errorf("lifetime_value_cents = %v, want 30000", got)
	}
}

func TestCustomer_RecordPurchase_RejectsNonPositive(t *testing.T) {
	customer := newTestCustomer(t, domain.TierFree)
	customer.MarkEventsCommitted()

	for _, amount := range []int64{0, -100} {
		if err := customer.RecordPurchase(amount); err == nil {
			t.Errorf("RecordPurchase(%d): expected error", amount)
		}
	}
	if customer.Version() != 1 {
		t.Errorf("Version = %d, want 1 (rejected calls must not bump)", customer.Version())
	}
}

func TestCustomer_ChangeTier(t *testing.T) {
	thresholds := map[domain.CustomerTier]int64{domain.TierGrowth: 500_000}
	guard := domain.TierWithinReach{Thresholds: thresholds}

	customer := newTestCustomer(t, domain.TierStarter)
	if err := customer.RecordPurchase(600_000); err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	customer.MarkEventsCommitted()

	if err := customer.ChangeTier(context.Background(), guard, domain.TierGrowth); err != nil {
		t.Fatalf("ChangeTier: %v", err)
	}

	if customer.Tier() != domain.TierGrowth {
		t.Errorf("Tier = %q, want %q", customer.Tier(), domain.TierGrowth)
	}
	events := customer.DomainEvents()
	if len(events) != 1 || events[0].Type() != "CustomerTierChanged" {
		t.Fatalf("events = %v, want one CustomerTierChanged", events)
	}
	data := events[0].Data()
	if data["from"] != "starter" || data["to"] != "growth" {
		t.Errorf("event data = %v, want from=starter to=growth", data)
	}
}

func TestCustomer_ChangeTier_NotReachable(t *testing.T) {
	guard := domain.TierWithinReach{Thresholds: map[domain.CustomerTier]int64{domain.TierEnterprise: 5_000_000}}

	customer := newTestCustomer(t, domain.TierFree)
	customer.MarkEventsCommitted()

	err := customer.ChangeTier(context.Background(), guard, domain.TierEnterprise)

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if violation.Rule != "customer.tier_not_reachable" {
		t.Errorf("rule = %q, want %q", violation.Rule, "customer.tier_not_reachable")
	}
	if customer.Tier() != domain.TierFree {
		t.Errorf("Tier = %q, want unchanged %q", customer.Tier(), domain.TierFree)
	}
	if customer.Version() != 1 {
		t.Errorf("Version = %d, want 1", customer.Version())
	}
}

func TestCustomer_ChangeTier_SameTierRejected(t *testing.T) {
	guard := domain.TierWithinReach{}
	customer := newTestCustomer(t, domain.TierStarter)

	err := customer.ChangeTier(context.Background(), guard, domain.TierStarter)

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if violation.Rule != "customer.tier_unchanged" {
		t.Errorf("rule = %q, want %q", violation.Rule, "customer.tier_unchanged")
	}
}

func TestCustomer_ChangeTier_UnknownTierRejected(t *testing.T) {
	customer := newTestCustomer(t, domain.TierStarter)

	if err := customer.ChangeTier(context.Background(), domain.TierWithinReach{}, "platinum"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestCustomer_SnapshotRoundTrip(t *testing.T) {
	customer := newTestCustomer(t, domain.TierGrowth)
	if err := customer.RecordPurchase(42_000); err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}

	restored := domain.CustomerFromSnapshot(customer.Snapshot())

	if !restored.IsPersisted() {
		t.Error("rehydrated customer should be persisted")
	}
	if restored.Tier() != customer.Tier() {
		t.Errorf("Tier = %q, want %q", restored.Tier(), customer.Tier())
	}
	if restored.LifetimeValueCents() != customer.LifetimeValueCents() {
		t.Errorf("LifetimeValueCents = %d, want %d", restored.LifetimeValueCents(), customer.LifetimeValueCents())
	}
	if restored.Profile() != customer.Profile() {
		t.Errorf("Profile = %+v, want %+v", restored.Profile(), customer.Profile())
	}
	if len(restored.DomainEvents()) != 0 {
		t.Errorf("rehydrated customer has %d buffered events, want 0", len(restored.DomainEvents()))
	}
}

func TestTierWithinReach_MissingThresholdHasNoMinimum(t *testing.T) {
	guard := domain.TierWithinReach{Thresholds: map[domain.CustomerTier]int64{domain.TierEnterprise: 5_000_000}}
	customer := newTestCustomer(t, domain.TierFree)

	ok, err := guard.IsSatisfiedBy(context.Background(), domain.TierChange{Customer: customer, To: domain.TierStarter})
	if err != nil {
		t.Fatalf("IsSatisfiedBy: %v", err)
	}
	if !ok {
		t.Error("tier without a threshold should always be within reach")
	}
}
