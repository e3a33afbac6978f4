package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// CampaignService orchestrates campaign lifecycle and spend tracking.
type CampaignService struct {
	campaigns     domain.CampaignRepository
	validator     domain.TransitionValidator
	scheduleGuard domain.Specification[domain.Schedule]
}

// NewCampaignService creates a service with the given adapters.
func NewCampaignService(campaigns domain.CampaignRepository, validator domain.TransitionValidator) *CampaignService {
	return &CampaignService{
		campaigns:     campaigns,
		validator:     validator,
		scheduleGuard: domain.ScheduleIsValid{},
	}
}

// Create persists a new draft campaign after validating its schedule.
func (s *CampaignService) Create(ctx context.Context, tenantID, name string, ctype domain.CampaignType, objective string, budget domain.Budget, schedule domain.Schedule) (*domain.Campaign, error) {
	ok, err := s.scheduleGuard.IsSatisfiedBy(ctx, schedule)
	if err != nil {
		return nil, fmt.Errorf("evaluating schedule rule: %w", err)
	}
	if !ok {
		return nil, &domain.BusinessRuleViolation{
			Rule: "campaign.invalid_schedule",
			Details: map[string]any{
				"starts_at": schedule.StartsAt,
				"ends_at":   schedule.EndsAt,
			},
		}
	}

	campaign, err := domain.NewCampaign(newID(), tenantID, name, ctype, objective, budget, schedule)
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, tenantID, campaign); err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}
	return campaign, nil
}

// GetByID returns a campaign scoped to the caller's tenant.
func (s *CampaignService) GetByID(ctx context.Context, id, tenantID string) (*domain.Campaign, error) {
	return s.campaigns.GetByID(ctx, id, tenantID)
}

// List returns campaigns matching the given filter.
func (s *CampaignService) List(ctx context.Context, tenantID string, filter domain.CampaignFilter) ([]*domain.Campaign, error) {
	return s.campaigns.List(ctx, tenantID, filter)
}

// ApplyTrigger moves a campaign through its lifecycle.
func (s *CampaignService) ApplyTrigger(ctx context.Context, id, tenantID string, trigger domain.CampaignTrigger) (*domain.Campaign, error) {
	return s.mutate(ctx, id, tenantID, func(c *domain.Campaign) error {
		return c.ApplyTrigger(ctx, s.validator, trigger)
	})
}

// RecordSpend adds spend to an active campaign.
func (s *CampaignService) RecordSpend(ctx context.Context, id, tenantID string, amountCents int64) (*domain.Campaign, error) {
	return s.mutate(ctx, id, tenantID, func(c *domain.Campaign) error {
		return c.RecordSpend(amountCents)
	})
}

// Reschedule replaces the run window of a not-yet-running campaign.
func (s *CampaignService) Reschedule(ctx context.Context, id, tenantID string, schedule domain.Schedule) (*domain.Campaign, error) {
	return s.mutate(ctx, id, tenantID, func(c *domain.Campaign) error {
		return c.Reschedule(ctx, s.scheduleGuard, schedule)
	})
}

// Delete removes a campaign and publishes a CampaignDeleted event.
func (s *CampaignService) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	return s.campaigns.Delete(ctx, id, tenantID)
}

func (s *CampaignService) mutate(ctx context.Context, id, tenantID string, fn func(*domain.Campaign) error) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if err := fn(campaign); err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, tenantID, campaign); err != nil {
		return nil, fmt.Errorf("saving campaign: %w", err)
	}
	return campaign, nil
}
