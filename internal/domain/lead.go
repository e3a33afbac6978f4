package domain

import (
	"context"
	"fmt"
	"time"
)

// AggregateTypeLead tags lead events and lead storage rows.
const AggregateTypeLead = "Lead"

// LeadStatus represents the qualification state of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Contact holds who the lead is. Immutable value, compared structurally.
type Contact struct {
	Email   string
	Name    string
	Company string
	Title   string
}

// UTMParams captures acquisition attribution.
type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
}

// CompanySize buckets used by lead scoring.
type CompanySize string

const (
	CompanySizeSmall      CompanySize = "small"
	CompanySizeMid        CompanySize = "mid"
	CompanySizeEnterprise CompanySize = "enterprise"
)

// ScoreFactors are the inputs to the lead score. The factors themselves are
// not stored; only the resulting score is.
type ScoreFactors struct {
	CompanySize   CompanySize
	BudgetCents   int64
	DecisionMaker bool
}

// score weights: company size up to 40, budget up to 30, decision maker 30.
func (f ScoreFactors) score() int {
	s := 0
	switch f.CompanySize {
	case CompanySizeEnterprise:
		s += 40
	case CompanySizeMid:
		s += 25
	case CompanySizeSmall:
		s += 10
	}
	switch {
	case f.BudgetCents >= 50_000_00:
		s += 30
	case f.BudgetCents >= 10_000_00:
		s += 15
	}
	if f.DecisionMaker {
		s += 30
	}
	return s
}

// Lead is the aggregate root for a sales prospect.
type Lead struct {
	AggregateRoot
	contact Contact
	source  string
	utm     UTMParams
	status  LeadStatus
	score   int
}

// NewLead creates a fresh lead in status "new" with score 0 and buffers a
// LeadCreated event.
func NewLead(id, tenantID string, contact Contact, source string, utm UTMParams) (*Lead, error) {
	if contact.Email == "" {
		return nil, &BusinessRuleViolation{
			Rule:    "lead.contact_email_required",
			Details: map[string]any{"field": "email"},
		}
	}

	l := &Lead{
		AggregateRoot: newAggregateRoot(AggregateTypeLead, id, tenantID),
		contact:       contact,
		source:        source,
		utm:           utm,
		status:        LeadStatusNew,
	}
	l.record("LeadCreated", map[string]any{
		"email":  contact.Email,
		"source": source,
	})
	return l, nil
}

func (l *Lead) Contact() Contact   { return l.contact }
func (l *Lead) Source() string     { return l.source }
func (l *Lead) UTM() UTMParams     { return l.utm }
func (l *Lead) Status() LeadStatus { return l.status }
func (l *Lead) Score() int         { return l.score }

// UpdateContact replaces the contact value object.
func (l *Lead) UpdateContact(contact Contact) error {
	if contact.Email == "" {
		return &BusinessRuleViolation{
			Rule:    "lead.contact_email_required",
			Details: map[string]any{"field": "email"},
		}
	}
	l.contact = contact
	l.bumpVersion()
	l.record("LeadContactUpdated", map[string]any{"email": contact.Email})
	return nil
}

// SetScoreFactors recomputes the score from the given factors. A no-op when
// the score does not change: no version bump, no event.
func (l *Lead) SetScoreFactors(factors ScoreFactors) {
	next := factors.score()
	if next == l.score {
		return
	}
	previous := l.score
	l.score = next
	l.bumpVersion()
	l.record("LeadScoreChanged", map[string]any{
		"previous_score": previous,
		"score":          next,
		"company_size":   string(factors.CompanySize),
		"budget_cents":   factors.BudgetCents,
		"decision_maker": factors.DecisionMaker,
	})
}

// MarkContacted moves a new lead to contacted.
func (l *Lead) MarkContacted() error {
	if l.status != LeadStatusNew {
		return &BusinessRuleViolation{
			Rule:    "lead.already_contacted",
			Details: map[string]any{"status": string(l.status)},
		}
	}
	l.status = LeadStatusContacted
	l.bumpVersion()
	l.record("LeadContacted", nil)
	return nil
}

// Qualify promotes the lead when the guarding specification passes.
// On rejection the lead is left exactly as it was.
func (l *Lead) Qualify(ctx context.Context, guard Specification[*Lead]) error {
	ok, err := guard.IsSatisfiedBy(ctx, l)
	if err != nil {
		return fmt.Errorf("evaluating qualification rule: %w", err)
	}
	if !ok {
		return &BusinessRuleViolation{
			Rule: "lead.qualification",
			Details: map[string]any{
				"status": string(l.status),
				"score":  l.score,
			},
		}
	}
	l.status = LeadStatusQualified
	l.bumpVersion()
	l.record("LeadQualified", map[string]any{"score": l.score})
	return nil
}

// Convert turns a qualified lead into a customer, recording the customer id
// in the LeadConverted event so subscribers can follow the hand-off.
func (l *Lead) Convert(ctx context.Context, guard Specification[*Lead], customerID string) error {
	ok, err := guard.IsSatisfiedBy(ctx, l)
	if err != nil {
		return fmt.Errorf("evaluating conversion rule: %w", err)
	}
	if !ok {
		return &BusinessRuleViolation{
			Rule:    "lead.not_convertible",
			Details: map[string]any{"status": string(l.status)},
		}
	}
	l.status = LeadStatusConverted
	l.bumpVersion()
	l.record("LeadConverted", map[string]any{"customer_id": customerID})
	return nil
}

// MarkLost closes the lead. Converted leads cannot be lost.
func (l *Lead) MarkLost(reason string) error {
	if l.status == LeadStatusConverted || l.status == LeadStatusLost {
		return &BusinessRuleViolation{
			Rule:    "lead.not_open",
			Details: map[string]any{"status": string(l.status)},
		}
	}
	l.status = LeadStatusLost
	l.bumpVersion()
	l.record("LeadLost", map[string]any{"reason": reason})
	return nil
}

// LeadSnapshot is the persisted shape of a lead. Repositories use it for
// row mapping; it carries no behavior.
type LeadSnapshot struct {
	ID        string
	TenantID  string
	Contact   Contact
	Source    string
	UTM       UTMParams
	Status    LeadStatus
	Score     int
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot exports the lead's persisted fields.
func (l *Lead) Snapshot() LeadSnapshot {
	return LeadSnapshot{
		ID:        l.ID(),
		TenantID:  l.TenantID(),
		Contact:   l.contact,
		Source:    l.source,
		UTM:       l.utm,
		Status:    l.status,
		Score:     l.score,
		Version:   l.Version(),
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}

// LeadFromSnapshot rehydrates a lead from storage with an empty event buffer.
func LeadFromSnapshot(s LeadSnapshot) *Lead {
	return &Lead{
		AggregateRoot: rehydrateRoot(AggregateTypeLead, s.ID, s.TenantID, s.Version, s.CreatedAt, s.UpdatedAt),
		contact:       s.Contact,
		source:        s.Source,
		utm:           s.UTM,
		status:        s.Status,
		score:         s.Score,
	}
}

// LeadIsOpen passes for leads that can still move through the funnel.
type LeadIsOpen struct{}

func (LeadIsOpen) IsSatisfiedBy(_ context.Context, l *Lead) (bool, error) {
	return l.status == LeadStatusNew || l.status == LeadStatusContacted, nil
}

// LeadMinimumScore passes when the lead's score reaches Min.
type LeadMinimumScore struct {
	Min int
}

func (s LeadMinimumScore) IsSatisfiedBy(_ context.Context, l *Lead) (bool, error) {
	return l.score >= s.Min, nil
}

// LeadIsQualified passes only for qualified leads.
type LeadIsQualified struct{}

func (LeadIsQualified) IsSatisfiedBy(_ context.Context, l *Lead) (bool, error) {
	return l.status == LeadStatusQualified, nil
}
