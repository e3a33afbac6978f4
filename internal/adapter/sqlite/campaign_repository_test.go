package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/leadiq/internal/adapter/sqlite"
	"github.com/neomorfeo/leadiq/internal/domain"
)

// tableValidator resolves triggers against the shared transition table.
type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.CampaignStatus, trigger domain.CampaignTrigger) (domain.CampaignStatus, error) {
	for _, tr := range domain.CampaignTransitions {
		if tr.Trigger == trigger && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.BusinessRuleViolation{
		Rule:    "campaign.invalid_transition",
		Details: map[string]any{"status": string(current), "trigger": string(trigger)},
	}
}

func newCampaign(t *testing.T, id, tenantID string) *domain.Campaign {
	t.Helper()
	campaign, err := domain.NewCampaign(id, tenantID, "Q3 Launch",
		domain.CampaignTypeEmail, "drive signups",
		domain.Budget{TotalCents: 100_000, DailyCents: 10_000},
		domain.Schedule{
			StartsAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		},
	)
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	return campaign
}

func TestCampaignRepository_SaveAndGetByID(t *testing.T) {
	store := newTestStore(t)
	pub := &capturePublisher{}
	repo := sqlite.NewCampaignRepository(store, pub)
	ctx := context.Background()

	campaign := newCampaign(t, "cp-1", "tenant-a")
	if err := repo.Save(ctx, "tenant-a", campaign); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Type() != "CampaignCreated" {
		t.Fatalf("published = %v, want one CampaignCreated", pub.events)
	}

	got, err := repo.GetByID(ctx, "cp-1", "tenant-a")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name() != "Q3 Launch" {
		t.Errorf("Name = %q, want %q", got.Name(), "Q3 Launch")
	}
	if got.Type() != domain.CampaignTypeEmail {
		t.Errorf("Type = %q, want %q", got.Type(), domain.CampaignTypeEmail)
	}
	if got.Budget() != campaign.Budget() {
		t.Errorf("Budget = %+v, want %+v", got.Budget(), campaign.Budget())
	}
	if !got.Schedule().StartsAt.Equal(campaign.Schedule().StartsAt) {
		t.Errorf("StartsAt = %v, want %v", got.Schedule().StartsAt, campaign.Schedule().StartsAt)
	}
	if got.Status() != domain.CampaignStatusDraft {
		t.Errorf("Status = %q, want %q", got.Status(), domain.CampaignStatusDraft)
	}
}

func TestCampaignRepository_SpendEventsKeepOrder(t *testing.T) {
	store := newTestStore(t)
	pub := &capturePublisher{}
	repo := sqlite.NewCampaignRepository(store, pub)
	ctx := context.Background()

	campaign := newCampaign(t, "cp-1", "tenant-a")
	if err := campaign.ApplyTrigger(ctx, tableValidator{}, domain.TriggerActivate); err != nil {
		t.Fatalf("ApplyTrigger: %v", err)
	}
	if err := repo.Save(ctx, "tenant-a", campaign); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	pub.events = nil

	loaded, err := repo.GetByID(ctx, "cp-1", "tenant-a")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	// This single spend crosses the 100_000 budget.
	if err := loaded.RecordSpend(150_000); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	if err := repo.Save(ctx, "tenant-a", loaded); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].Type() != "CampaignSpendRecorded" {
		t.Errorf("events[0] = %q, want CampaignSpendRecorded first", pub.events[0].Type())
	}
	if pub.events[1].Type() != "CampaignBudgetExceeded" {
		t.Errorf("events[1] = %q, want CampaignBudgetExceeded second", pub.events[1].Type())
	}

	got, _ := repo.GetByID(ctx, "cp-1", "tenant-a")
	if got.SpendCents() != 150_000 {
		t.Errorf("SpendCents = %d, want 150000", got.SpendCents())
	}
}

func TestCampaignRepository_List_FilterByStatus(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewCampaignRepository(store, &capturePublisher{})
	ctx := context.Background()

	draft := newCampaign(t, "cp-1", "tenant-a")
	if err := repo.Save(ctx, "tenant-a", draft); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	active := newCampaign(t, "cp-2", "tenant-a")
	if err := active.ApplyTrigger(ctx, tableValidator{}, domain.TriggerActivate); err != nil {
		t.Fatalf("ApplyTrigger: %v", err)
	}
	if err := repo.Save(ctx, "tenant-a", active); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	status := domain.CampaignStatusActive
	campaigns, err := repo.List(ctx, "tenant-a", domain.CampaignFilter{Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("got %d campaigns, want 1", len(campaigns))
	}
	if campaigns[0].ID() != "cp-2" {
		t.Errorf("ID = %q, want %q", campaigns[0].ID(), "cp-2")
	}
}

func TestCampaignRepository_StaleVersion(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewCampaignRepository(store, &capturePublisher{})
	ctx := context.Background()

	if err := repo.Save(ctx, "tenant-a", newCampaign(t, "cp-1", "tenant-a")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, _ := repo.GetByID(ctx, "cp-1", "tenant-a")
	second, _ := repo.GetByID(ctx, "cp-1", "tenant-a")

	if err := first.ApplyTrigger(ctx, tableValidator{}, domain.TriggerSchedule); err != nil {
		t.Fatalf("ApplyTrigger: %v", err)
	}
	if err := repo.Save(ctx, "tenant-a", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := second.ApplyTrigger(ctx, tableValidator{}, domain.TriggerCancel); err != nil {
		t.Fatalf("ApplyTrigger: %v", err)
	}
	err := repo.Save(ctx, "tenant-a", second)

	var concErr *domain.ConcurrencyError
	if !errors.As(err, &concErr) {
		t.Fatalf("expected ConcurrencyError, got %v", err)
	}
}

func TestCampaignRepository_Delete(t *testing.T) {
	store := newTestStore(t)
	pub := &capturePublisher{}
	repo := sqlite.NewCampaignRepository(store, pub)
	ctx := context.Background()

	if err := repo.Save(ctx, "tenant-a", newCampaign(t, "cp-1", "tenant-a")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deleted, err := repo.Delete(ctx, "cp-1", "tenant-a")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("Delete should report true")
	}
	last := pub.events[len(pub.events)-1]
	if last.Type() != "CampaignDeleted" {
		t.Errorf("event type = %q, want %q", last.Type(), "CampaignDeleted")
	}
}
