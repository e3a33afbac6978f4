package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/leadiq/internal/domain"
)

func newTestLead(t *testing.T) *domain.Lead {
	t.Helper()
	lead, err := domain.NewLead("lead-1", "tenant-a",
		domain.Contact{Email: "jane@acme.com", Name: "Jane", Company: "Acme"},
		"webinar",
		domain.UTMParams{Source: "google", Medium: "cpc", Campaign: "q3-launch"},
	)
	if err != nil {
		t.Fatalf("NewLead: %v", err)
	}
	return lead
}

// qualifiedTestLead returns a lead driven to qualified through its own
// business methods.
func qualifiedTestLead(t *testing.T) *domain.Lead {
	t.Helper()
	lead := newTestLead(t)
	lead.SetScoreFactors(domain.ScoreFactors{CompanySize: domain.CompanySizeEnterprise, BudgetCents: 60_000_00, DecisionMaker: true})
	if err := lead.Qualify(context.Background(), domain.LeadMinimumScore{Min: 60}); err != nil {
		t.Fatalf("Qualify: %v", err)
	}
	return lead
}

func TestNewLead(t *testing.T) {
	lead := newTestLead(t)

	if lead.ID() != "lead-1" {
		t.Errorf("ID = %q, want %q", lead.ID(), "lead-1")
	}
	if lead.TenantID() != "tenant-a" {
		t.Errorf("TenantID = %q, want %q", lead.TenantID(), "tenant-a")
	}
	if lead.AggregateType() != domain.AggregateTypeLead {
		t.Errorf("AggregateType = %q, want %q", lead.AggregateType(), domain.AggregateTypeLead)
	}
	if lead.Status() != domain.LeadStatusNew {
		t.Errorf("Status = %q, want %q", lead.Status(), domain.LeadStatusNew)
	}
	if lead.Score() != 0 {
		t.Errorf("Score = %d, want 0", lead.Score())
	}
	if lead.Version() != 1 {
		t.Errorf("Version = %d, want 1", lead.Version())
	}
	if lead.IsPersisted() {
		t.Error("fresh lead should not be persisted")
	}

	events := lead.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type() != "LeadCreated" {
		t.Errorf("event type = %q, want %q", events[0].Type(), "LeadCreated")
	}
	if events[0].TenantID() != "tenant-a" {
		t.Errorf("event tenant = %q, want %q", events[0].TenantID(), "tenant-a")
	}
}

func TestNewLead_RequiresEmail(t *testing.T) {
	_, err := domain.NewLead("lead-1", "tenant-a", domain.Contact{Name: "No Email"}, "", domain.UTMParams{})

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if violation.Rule != "lead.contact_email_required" {
		t.Errorf("rule = %q, want %q", violation.Rule, "lead.contact_email_required")
	}
}

func TestLead_UpdateContact(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	err := lead.UpdateContact(domain.Contact{Email: "jane.doe@acme.com", Name: "Jane Doe", Company: "Acme", Title: "VP Sales"})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}

	if lead.Contact().Email != "jane.doe@acme.com" {
		t.Errorf("Email = %q, want %q", lead.Contact().Email, "jane.doe@acme.com")
	}
	if lead.Version() != 2 {
		t.Errorf("Version = %d, want 2", lead.Version())
	}

	events := lead.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type() != "LeadContactUpdated" {
		t.Errorf("event type = %q, want %q", events[0].Type(), "LeadContactUpdated")
	}
}

func TestLead_UpdateContact_RequiresEmail(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	err := lead.UpdateContact(domain.Contact{Name: "No Email"})

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if lead.Contact().Email != "jane@acme.com" {
		t.Errorf("Email = %q, want original %q", lead.Contact().Email, "jane@acme.com")
	}
	if lead.Version() != 1 {
		t.Errorf("Version = %d, want 1", lead.Version())
	}
}

func TestLead_SetScoreFactors(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	lead.SetScoreFactors(domain.ScoreFactors{
		CompanySize:   domain.CompanySizeEnterprise,
		BudgetCents:   75_000_00,
		DecisionMaker: true,
	})

	if lead.Score() != 100 {
		t.Errorf("Score = %d, want 100", lead.Score())
	}
	if lead.Version() != 2 {
		t.Errorf("Version = %d, want 2 (exactly one bump per mutation)", lead.Version())
	}

	events := lead.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type() != "LeadScoreChanged" {
		t.Errorf("event type = %q, want %q", events[0].Type(), "LeadScoreChanged")
	}
	data := events[0].Data()
	if data["previous_score"] != 0 {
		t.Errorf("previous_score = %v, want 0", data["previous_score"])
	}
	if data["score"] != 100 {
		t.Errorf("score = %v, want 100", data["score"])
	}
}

func TestLead_SetScoreFactors_Weights(t *testing.T) {
	cases := []struct {
		name    string
		factors domain.ScoreFactors
		want    int
	}{
		{"zero value", domain.ScoreFactors{}, 0},
		{"small company only", domain.ScoreFactors{CompanySize: domain.CompanySizeSmall}, 10},
		{"mid company only", domain.ScoreFactors{CompanySize: domain.CompanySizeMid}, 25},
		{"enterprise only", domain.ScoreFactors{CompanySize: domain.CompanySizeEnterprise}, 40},
		{"mid budget", domain.ScoreFactors{BudgetCents: 10_000_00}, 15},
		{"high budget", domain.ScoreFactors{BudgetCents: 50_000_00}, 30},
		{"decision maker", domain.ScoreFactors{DecisionMaker: true}, 30},
		{"all maxed", domain.ScoreFactors{CompanySize: domain.CompanySizeEnterprise, BudgetCents: 99_999_00, DecisionMaker: true}, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := newTestLead(t)
			lead.SetScoreFactors(tc.factors)
			if lead.Score() != tc.want {
				t.Errorf("Score = %d, want %d", lead.Score(), tc.want)
			}
		})
	}
}

func TestLead_SetScoreFactors_UnchangedScoreIsNoOp(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	lead.SetScoreFactors(domain.ScoreFactors{}) // score stays 0

	if lead.Version() != 1 {
		t.Errorf("Version = %d, want 1 (no bump on unchanged score)", lead.Version())
	}
	if len(lead.DomainEvents()) != 0 {
		t.Errorf("got %d events, want 0", len(lead.DomainEvents()))
	}
	if lead.IsDirty() {
		t.Error("lead should not be dirty after a no-op")
	}
}

func TestLead_MarkContacted(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	if err := lead.MarkContacted(); err != nil {
		t.Fatalf("MarkContacted: %v", err)
	}
	if lead.Status() != domain.LeadStatusContacted {
		t.Errorf("Status = %q, want %q", lead.Status(), domain.LeadStatusContacted)
	}

	// Second touch is rejected and changes nothing.
	err := lead.MarkContacted()
	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if lead.Version() != 2 {
		t.Errorf("Version = %d, want 2 (rejected call must not bump)", lead.Version())
	}
}

func TestLead_Qualify_GuardRejects(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	guard := domain.And[*domain.Lead](domain.LeadIsOpen{}, domain.LeadMinimumScore{Min: 60})
	err := lead.Qualify(context.Background(), guard)

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if violation.Rule != "lead.qualification" {
		t.Errorf("rule = %q, want %q", violation.Rule, "lead.qualification")
	}

	// Rejection leaves the lead exactly as it was.
	if lead.Status() != domain.LeadStatusNew {
		t.Errorf("Status = %q, want %q", lead.Status(), domain.LeadStatusNew)
	}
	if lead.Version() != 1 {
		t.Errorf("Version = %d, want 1", lead.Version())
	}
	if len(lead.DomainEvents()) != 0 {
		t.Errorf("got %d events, want 0", len(lead.DomainEvents()))
	}
}

func TestLead_Qualify(t *testing.T) {
	lead := newTestLead(t)
	lead.SetScoreFactors(domain.ScoreFactors{CompanySize: domain.CompanySizeEnterprise, BudgetCents: 60_000_00})
	lead.MarkEventsCommitted()

	guard := domain.And[*domain.Lead](domain.LeadIsOpen{}, domain.LeadMinimumScore{Min: 60})
	if err := lead.Qualify(context.Background(), guard); err != nil {
		t.Fatalf("Qualify: %v", err)
	}

	if lead.Status() != domain.LeadStatusQualified {
		t.Errorf("Status = %q, want %q", lead.Status(), domain.LeadStatusQualified)
	}
	events := lead.DomainEvents()
	if len(events) != 1 || events[0].Type() != "LeadQualified" {
		t.Fatalf("events = %v, want one LeadQualified", events)
	}
}

func TestLead_Qualify_GuardError(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	boom := errors.New("lookup failed")
	guard := domain.SpecFunc[*domain.Lead](func(_ context.Context, _ *domain.Lead) (bool, error) {
		return false, boom
	})

	if err := lead.Qualify(context.Background(), guard); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
	if lead.Status() != domain.LeadStatusNew {
		t.Errorf("Status = %q, want unchanged %q", lead.Status(), domain.LeadStatusNew)
	}
}

func TestLead_Convert(t *testing.T) {
	lead := qualifiedTestLead(t)
	lead.MarkEventsCommitted()

	if err := lead.Convert(context.Background(), domain.LeadIsQualified{}, "customer-7"); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if lead.Status() != domain.LeadStatusConverted {
		t.Errorf("Status = %q, want %q", lead.Status(), domain.LeadStatusConverted)
	}
	events := lead.DomainEvents()
	if len(events) != 1 || events[0].Type() != "LeadConverted" {
		t.Fatalf("events = %v, want one LeadConverted", events)
	}
	if got := events[0].Data()["customer_id"]; got != "customer-7" {
		t.Errorf("customer_id = %v, want %q", got, "customer-7")
	}
}

func TestLead_Convert_NotQualified(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	err := lead.Convert(context.Background(), domain.LeadIsQualified{}, "customer-7")

	var violation *domain.BusinessRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want BusinessRuleViolation", err)
	}
	if lead.Status() != domain.LeadStatusNew {
		t.Errorf("Status = %q, want unchanged %q", lead.Status(), domain.LeadStatusNew)
	}
}

func TestLead_MarkLost(t *testing.T) {
	lead := newTestLead(t)
	lead.MarkEventsCommitted()

	if err := lead.MarkLost("no budget"); err != nil {
		t.Fatalf("MarkLost: %v", err)
	}
	if lead.Status() != domain.LeadStatusLost {
		t.Errorf("Status = %q, want %q", lead.Status(), domain.LeadStatusLost)
	}

	// A lost lead cannot be lost again.
	if err := lead.MarkLost("again"); err == nil {
		t.Error("expected error when losing an already lost lead")
	}
}

func TestLead_MarkLost_ConvertedLeadRejected(t *testing.T) {
	lead := qualifiedTestLead(t)
	if err := lead.Convert(context.Background(), domain.LeadIsQualified{}, "customer-7"); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if err := lead.MarkLost("changed mind"); err == nil {
		t.Error("expected error when losing a converted lead")
	}
}

func TestLead_DomainEventsReturnsCopy(t *testing.T) {
	lead := newTestLead(t)

	events := lead.DomainEvents()
	events[0] = domain.Event{}

	if lead.DomainEvents()[0].Type() != "LeadCreated" {
		t.Error("mutating the returned slice must not affect the buffer")
	}
}

func TestLead_SnapshotRoundTrip(t *testing.T) {
	lead := qualifiedTestLead(t)

	snap := lead.Snapshot()
	restored := domain.LeadFromSnapshot(snap)

	if !restored.IsPersisted() {
		t.Error("rehydrated lead should be persisted")
	}
	if restored.Version() != lead.Version() {
		t.Errorf("Version = %d, want %d", restored.Version(), lead.Version())
	}
	if restored.ExpectedVersion() != lead.Version() {
		t.Errorf("ExpectedVersion = %d, want %d", restored.ExpectedVersion(), lead.Version())
	}
	if restored.Status() != lead.Status() {
		t.Errorf("Status = %q, want %q", restored.Status(), lead.Status())
	}
	if restored.Score() != lead.Score() {
		t.Errorf("Score = %d, want %d", restored.Score(), lead.Score())
	}
	if restored.Contact() != lead.Contact() {
		t.Errorf("Contact = %+v, want %+v", restored.Contact(), lead.Contact())
	}
	if len(restored.DomainEvents()) != 0 {
		t.Errorf("rehydrated lead has %d buffered events, want 0", len(restored.DomainEvents()))
	}
	if restored.IsDirty() {
		t.Error("rehydrated lead should not be dirty")
	}
}

func TestLead_VersionTracksMutations(t *testing.T) {
	lead := newTestLead(t)

	lead.SetScoreFactors(domain.ScoreFactors{CompanySize: domain.CompanySizeEnterprise, BudgetCents: 60_000_00, DecisionMaker: true})
	if err := lead.MarkContacted(); err != nil {
		t.Fatalf("MarkContacted: %v", err)
	}
	if err := lead.Qualify(context.Background(), domain.LeadMinimumScore{Min: 60}); err != nil {
		t.Fatalf("Qualify: %v", err)
	}

	if lead.Version() != 4 {
		t.Errorf("Version = %d, want 4 after three mutations", lead.Version())
	}
	if len(lead.DomainEvents()) != 4 {
		t.Errorf("got %d buffered events, want 4", len(lead.DomainEvents()))
	}
}
