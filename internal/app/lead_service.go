package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// QualificationScoreThreshold is the minimum score a lead needs before it
// can be qualified.
const QualificationScoreThreshold = 60

// LeadService orchestrates the lead funnel. Single-aggregate operations go
// through the standalone repository; conversion spans two aggregates and
// runs in a unit of work.
type LeadService struct {
	leads       domain.LeadRepository
	uow         domain.UnitOfWorkFactory
	qualifiable domain.Specification[*domain.Lead]
	convertible domain.Specification[*domain.Lead]
}

// NewLeadService creates a service with the given adapters.
func NewLeadService(leads domain.LeadRepository, uow domain.UnitOfWorkFactory) *LeadService {
	return &LeadService{
		leads: leads,
		uow:   uow,
		qualifiable: domain.And[*domain.Lead](
			domain.LeadIsOpen{},
			domain.LeadMinimumScore{Min: QualificationScoreThreshold},
		),
		convertible: domain.LeadIsQualified{},
	}
}

// Create persists a new lead; its LeadCreated event publishes after the write.
func (s *LeadService) Create(ctx context.Context, tenantID string, contact domain.Contact, source string, utm domain.UTMParams) (*domain.Lead, error) {
	lead, err := domain.NewLead(newID(), tenantID, contact, source, utm)
	if err != nil {
		return nil, err
	}
	if err := s.leads.Save(ctx, tenantID, lead); err != nil {
		return nil, fmt.Errorf("creating lead: %w", err)
	}
	return lead, nil
}

// GetByID returns a lead scoped to the caller's tenant.
func (s *LeadService) GetByID(ctx context.Context, id, tenantID string) (*domain.Lead, error) {
	return s.leads.GetByID(ctx, id, tenantID)
}

// List returns leads matching the given filter.
func (s *LeadService) List(ctx context.Context, tenantID string, filter domain.LeadFilter) ([]*domain.Lead, error) {
	return s.leads.List(ctx, tenantID, filter)
}

// UpdateContact replaces the lead's contact details.
func (s *LeadService) UpdateContact(ctx context.Context, id, tenantID string, contact domain.Contact) (*domain.Lead, error) {
	return s.mutate(ctx, id, tenantID, func(l *domain.Lead) error {
		return l.UpdateContact(contact)
	})
}

// SetScoreFactors recomputes the lead's score and persists the change. A
// score that does not move is a no-op with no write and no event.
func (s *LeadService) SetScoreFactors(ctx context.Context, id, tenantID string, factors domain.ScoreFactors) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	lead.SetScoreFactors(factors)
	if !lead.IsDirty() {
		return lead, nil
	}

	if err := s.leads.Save(ctx, tenantID, lead); err != nil {
		return nil, fmt.Errorf("saving lead score: %w", err)
	}
	return lead, nil
}

// MarkContacted records the first touch on a lead.
func (s *LeadService) MarkContacted(ctx context.Context, id, tenantID string) (*domain.Lead, error) {
	return s.mutate(ctx, id, tenantID, func(l *domain.Lead) error {
		return l.MarkContacted()
	})
}

// Qualify promotes a lead that passes the qualification rule.
func (s *LeadService) Qualify(ctx context.Context, id, tenantID string) (*domain.Lead, error) {
	return s.mutate(ctx, id, tenantID, func(l *domain.Lead) error {
		return l.Qualify(ctx, s.qualifiable)
	})
}

// MarkLost closes a lead with a reason.
func (s *LeadService) MarkLost(ctx context.Context, id, tenantID, reason string) (*domain.Lead, error) {
	return s.mutate(ctx, id, tenantID, func(l *domain.Lead) error {
		return l.MarkLost(reason)
	})
}

// Convert turns a qualified lead into a customer. The lead update and the
// customer insert share one unit of work: both land or neither does. The
// LeadConverted and CustomerCreated events flush only after the commit.
func (s *LeadService) Convert(ctx context.Context, id, tenantID string) (*domain.Lead, *domain.Customer, error) {
	var (
		lead     *domain.Lead
		customer *domain.Customer
	)

	err := runInUnitOfWork(ctx, s.uow, func(uow domain.UnitOfWork) error {
		l, err := uow.Leads().GetByID(ctx, id, tenantID)
		if err != nil {
			return err
		}

		contact := l.Contact()
		c, err := domain.NewCustomer(newID(), tenantID, domain.Profile{
			Email:   contact.Email,
			Name:    contact.Name,
			Company: contact.Company,
		}, domain.TierFree)
		if err != nil {
			return err
		}

		if err := l.Convert(ctx, s.convertible, c.ID()); err != nil {
			return err
		}

		if err := uow.Customers().Save(ctx, tenantID, c); err != nil {
			return fmt.Errorf("creating customer from lead: %w", err)
		}
		if err := uow.Leads().Save(ctx, tenantID, l); err != nil {
			return fmt.Errorf("saving converted lead: %w", err)
		}

		lead, customer = l, c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return lead, customer, nil
}

// Delete removes a lead and publishes a LeadDeleted event. Reports false
// when nothing matched.
func (s *LeadService) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	return s.leads.Delete(ctx, id, tenantID)
}

// mutate loads, applies one business method, and saves.
func (s *LeadService) mutate(ctx context.Context, id, tenantID string, fn func(*domain.Lead) error) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if err := fn(lead); err != nil {
		return nil, err
	}
	if err := s.leads.Save(ctx, tenantID, lead); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}
	return lead, nil
}
