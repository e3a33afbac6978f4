package domain

import (
	"context"
	"time"
)

// AggregateTypeCustomer tags customer events and customer storage rows.
const AggregateTypeCustomer = "Customer"

// CustomerTier is the subscription tier of a customer.
type CustomerTier string

const (
	TierFree       CustomerTier = "free"
	TierStarter    CustomerTier = "starter"
	TierGrowth     CustomerTier = "growth"
	TierEnterprise CustomerTier = "enterprise"
)

// ValidCustomerTier reports whether t is a known tier.
func ValidCustomerTier(t CustomerTier) bool {
	switch t {
	case TierFree, TierStarter, TierGrowth, TierEnterprise:
		return true
	}
	return false
}

// Profile holds the customer's identity details.
type Profile struct {
	Email   string
	Name    string
	Company string
	Phone   string
}

// Customer is the aggregate root for a paying (or free-tier) account.
type Customer struct {
	AggregateRoot
	profile            Profile
	tier               CustomerTier
	lifetimeValueCents int64
}

// NewCustomer creates a fresh customer and buffers a CustomerCreated event.
// An empty tier defaults to free.
func NewCustomer(id, tenantID string, profile Profile, tier CustomerTier) (*Customer, error) {
	if profile.Email == "" {
		return nil, &BusinessRuleViolation{
			Rule:    "customer.profile_email_required",
			Details: map[string]any{"field": "email"},
		}
	}
	if tier == "" {
		tier = TierFree
	}
	if !ValidCustomerTier(tier) {
		return nil, &BusinessRuleViolation{
			Rule:    "customer.unknown_tier",
			Details: map[string]any{"tier": string(tier)},
		}
	}

	c := &Customer{
		AggregateRoot: newAggregateRoot(AggregateTypeCustomer, id, tenantID),
		profile:       profile,
		tier:          tier,
	}
	c.record("CustomerCreated", map[string]any{
		"email": profile.Email,
		"tier":  string(tier),
	})
	return c, nil
}

func (c *Customer) Profile() Profile          { return c.profile }
func (c *Customer) Tier() CustomerTier        { return c.tier }
func (c *Customer) LifetimeValueCents() int64 { return c.lifetimeValueCents }

// UpdateProfile replaces the profile value object.
func (c *Customer) UpdateProfile(profile Profile) error {
	if profile.Email == "" {
		return &BusinessRuleViolation{
			Rule:    "customer.profile_email_required",
			Details: map[string]any{"field": "email"},
		}
	}
	c.profile = profile
	c.bumpVersion()
	c.record("CustomerProfileUpdated", map[string]any{"email": profile.Email})
	return nil
}

// RecordPurchase adds a purchase amount to the customer's lifetime value.
func (c *Customer) RecordPurchase(amountCents int64) error {
	if amountCents <= 0 {
		return &BusinessRuleViolation{
			Rule:    "customer.purchase_amount_positive",
			Details: map[string]any{"amount_cents": amountCents},
		}
	}
	c.lifetimeValueCents += amountCents
	c.bumpVersion()
	c.record("CustomerPurchaseRecorded", map[string]any{
		"amount_cents":         amountCents,
		"lifetime_value_cents": c.lifetimeValueCents,
	})
	return nil
}

// TierChange is the candidate a tier-change specification is evaluated
// against: the customer plus the tier they want to move to.
type TierChange struct {
	Customer *Customer
	To       CustomerTier
}

// ChangeTier moves the customer to a new tier when the guarding
// specification passes. Changing to the current tier is rejected.
func (c *Customer) ChangeTier(ctx context.Context, guard Specification[TierChange], to CustomerTier) error {
	if !ValidCustomerTier(to) {
		return &BusinessRuleViolation{
			Rule:    "customer.unknown_tier",
			Details: map[string]any{"tier": string(to)},
		}
	}
	if to == c.tier {
		return &BusinessRuleViolation{
			Rule:    "customer.tier_unchanged",
			Details: map[string]any{"tier": string(to)},
		}
	}

	ok, err := guard.IsSatisfiedBy(ctx, TierChange{Customer: c, To: to})
	if err != nil {
		return err
	}
	if !ok {
		return &BusinessRuleViolation{
			Rule: "customer.tier_not_reachable",
			Details: map[string]any{
				"tier":                 string(to),
				"lifetime_value_cents": c.lifetimeValueCents,
			},
		}
	}

	from := c.tier
	c.tier = to
	c.bumpVersion()
	c.record("CustomerTierChanged", map[string]any{
		"from": string(from),
		"to":   string(to),
	})
	return nil
}

// CustomerSnapshot is the persisted shape of a customer.
type CustomerSnapshot struct {
	ID                 string
	TenantID           string
	Profile            Profile
	Tier               CustomerTier
	LifetimeValueCents int64
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Snapshot exports the customer's persisted fields.
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		ID:                 c.ID(),
		TenantID:           c.TenantID(),
		Profile:            c.profile,
		Tier:               c.tier,
		LifetimeValueCents: c.lifetimeValueCents,
		Version:            c.Version(),
		CreatedAt:          c.CreatedAt(),
		UpdatedAt:          c.UpdatedAt(),
	}
}

// CustomerFromSnapshot rehydrates a customer with an empty event buffer.
func CustomerFromSnapshot(s CustomerSnapshot) *Customer {
	return &Customer{
		AggregateRoot:      rehydrateRoot(AggregateTypeCustomer, s.ID, s.TenantID, s.Version, s.CreatedAt, s.UpdatedAt),
		profile:            s.Profile,
		tier:               s.Tier,
		lifetimeValueCents: s.LifetimeValueCents,
	}
}

// TierWithinReach passes when the customer's lifetime value meets the
// minimum configured for the target tier. Tiers missing from Thresholds
// have no minimum.
type TierWithinReach struct {
	Thresholds map[CustomerTier]int64
}

func (s TierWithinReach) IsSatisfiedBy(_ context.Context, change TierChange) (bool, error) {
	return change.Customer.LifetimeValueCents() >= s.Thresholds[change.To], nil
}
