package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// DefaultTierThresholds is the minimum lifetime value, in cents, a customer
// needs before moving to each tier. Free and starter have no floor.
var DefaultTierThresholds = map[domain.CustomerTier]int64{
	domain.TierGrowth:     500_000,
	domain.TierEnterprise: 5_000_000,
}

// CustomerService orchestrates customer account operations.
type CustomerService struct {
	customers domain.CustomerRepository
	tierGuard domain.Specification[domain.TierChange]
}

// NewCustomerService creates a service with the given repository and the
// default tier thresholds.
func NewCustomerService(customers domain.CustomerRepository) *CustomerService {
	return &CustomerService{
		customers: customers,
		tierGuard: domain.TierWithinReach{Thresholds: DefaultTierThresholds},
	}
}

// Create persists a new customer.
func (s *CustomerService) Create(ctx context.Context, tenantID string, profile domain.Profile, tier domain.CustomerTier) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(newID(), tenantID, profile, tier)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, tenantID, customer); err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return customer, nil
}

// GetByID returns a customer scoped to the caller's tenant.
func (s *CustomerService) GetByID(ctx context.Context, id, tenantID string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id, tenantID)
}

// List returns customers matching the given filter.
func (s *CustomerService) List(ctx context.Context, tenantID string, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	return s.customers.List(ctx, tenantID, filter)
}

// UpdateProfile replaces the customer's profile.
func (s *CustomerService) UpdateProfile(ctx context.Context, id, tenantID string, profile domain.Profile) (*domain.Customer, error) {
	return s.mutate(ctx, id, tenantID, func(c *domain.Customer) error {
		return c.UpdateProfile(profile)
	})
}

// RecordPurchase adds a purchase to the customer's lifetime value.
func (s *CustomerService) RecordPurchase(ctx context.Context, id, tenantID string, amountCents int64) (*domain.Customer, error) {
	return s.mutate(ctx, id, tenantID, func(c *domain.Customer) error {
		return c.RecordPurchase(amountCents)
	})
}

// ChangeTier moves the customer to a new tier when their lifetime value
// reaches the configured threshold.
func (s *CustomerService) ChangeTier(ctx context.Context, id, tenantID string, to domain.CustomerTier) (*domain.Customer, error) {
	return s.mutate(ctx, id, tenantID, func(c *domain.Customer) error {
		return c.ChangeTier(ctx, s.tierGuard, to)
	})
}

// Delete removes a customer and publishes a CustomerDeleted event.
func (s *CustomerService) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	return s.customers.Delete(ctx, id, tenantID)
}

func (s *CustomerService) mutate(ctx context.Context, id, tenantID string, fn func(*domain.Customer) error) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if err := fn(customer); err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, tenantID, customer); err != nil {
		return nil, fmt.Errorf("saving customer: %w", err)
	}
	return customer, nil
}
