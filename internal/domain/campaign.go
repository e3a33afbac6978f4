package domain

import (
	"context"
	"time"
)

// AggregateTypeCampaign tags campaign events and campaign storage rows.
const AggregateTypeCampaign = "Campaign"

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// CampaignTrigger is an action that moves a campaign through its lifecycle.
type CampaignTrigger string

const (
	TriggerSchedule CampaignTrigger = "schedule"
	TriggerActivate CampaignTrigger = "activate"
	TriggerPause    CampaignTrigger = "pause"
	TriggerResume   CampaignTrigger = "resume"
	TriggerComplete CampaignTrigger = "complete"
	TriggerCancel   CampaignTrigger = "cancel"
)

// CampaignTransition defines a valid status change: a trigger moves a
// campaign from Src to Dst.
type CampaignTransition struct {
	Trigger CampaignTrigger
	Src     CampaignStatus
	Dst     CampaignStatus
}

// CampaignTransitions defines all valid status changes in the campaign
// lifecycle. This is domain knowledge consumed by the FSM adapter.
var CampaignTransitions = []CampaignTransition{
	{Trigger: TriggerSchedule, Src: CampaignStatusDraft, Dst: CampaignStatusScheduled},
	{Trigger: TriggerActivate, Src: CampaignStatusDraft, Dst: CampaignStatusActive},
	{Trigger: TriggerActivate, Src: CampaignStatusScheduled, Dst: CampaignStatusActive},
	{Trigger: TriggerPause, Src: CampaignStatusActive, Dst: CampaignStatusPaused},
	{Trigger: TriggerResume, Src: CampaignStatusPaused, Dst: CampaignStatusActive},
	{Trigger: TriggerComplete, Src: CampaignStatusActive, Dst: CampaignStatusCompleted},
	{Trigger: TriggerComplete, Src: CampaignStatusPaused, Dst: CampaignStatusCompleted},
	{Trigger: TriggerCancel, Src: CampaignStatusDraft, Dst: CampaignStatusCancelled},
	{Trigger: TriggerCancel, Src: CampaignStatusScheduled, Dst: CampaignStatusCancelled},
	{Trigger: TriggerCancel, Src: CampaignStatusActive, Dst: CampaignStatusCancelled},
	{Trigger: TriggerCancel, Src: CampaignStatusPaused, Dst: CampaignStatusCancelled},
}

// CampaignType classifies the channel a campaign runs on.
type CampaignType string

const (
	CampaignTypeEmail   CampaignType = "email"
	CampaignTypeSocial  CampaignType = "social"
	CampaignTypeSearch  CampaignType = "search"
	CampaignTypeDisplay CampaignType = "display"
)

// Budget is the campaign's spend envelope, in cents.
type Budget struct {
	TotalCents int64
	DailyCents int64
}

// Schedule is the campaign's run window.
type Schedule struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// Campaign is the aggregate root for a marketing campaign.
type Campaign struct {
	AggregateRoot
	name       string
	ctype      CampaignType
	objective  string
	budget     Budget
	schedule   Schedule
	status     CampaignStatus
	spendCents int64
}

// NewCampaign creates a fresh draft campaign and buffers a CampaignCreated
// event.
func NewCampaign(id, tenantID, name string, ctype CampaignType, objective string, budget Budget, schedule Schedule) (*Campaign, error) {
	if name == "" {
		return nil, &BusinessRuleViolation{
			Rule:    "campaign.name_required",
			Details: map[string]any{"field": "name"},
		}
	}
	if budget.TotalCents <= 0 {
		return nil, &BusinessRuleViolation{
			Rule:    "campaign.budget_positive",
			Details: map[string]any{"budget_total_cents": budget.TotalCents},
		}
	}

	c := &Campaign{
		AggregateRoot: newAggregateRoot(AggregateTypeCampaign, id, tenantID),
		name:          name,
		ctype:         ctype,
		objective:     objective,
		budget:        budget,
		schedule:      schedule,
		status:        CampaignStatusDraft,
	}
	c.record("CampaignCreated", map[string]any{
		"name": name,
		"type": string(ctype),
	})
	return c, nil
}

func (c *Campaign) Name() string           { return c.name }
func (c *Campaign) Type() CampaignType     { return c.ctype }
func (c *Campaign) Objective() string      { return c.objective }
func (c *Campaign) Budget() Budget         { return c.budget }
func (c *Campaign) Schedule() Schedule     { return c.schedule }
func (c *Campaign) Status() CampaignStatus { return c.status }
func (c *Campaign) SpendCents() int64      { return c.spendCents }

// ApplyTrigger moves the campaign through its lifecycle. The validator
// arbitrates which transitions are legal; an illegal one leaves the
// campaign unchanged.
func (c *Campaign) ApplyTrigger(ctx context.Context, validator TransitionValidator, trigger CampaignTrigger) error {
	next, err := validator.Apply(ctx, c.status, trigger)
	if err != nil {
		return err
	}
	from := c.status
	c.status = next
	c.bumpVersion()
	c.record("CampaignStatusChanged", map[string]any{
		"from":    string(from),
		"to":      string(next),
		"trigger": string(trigger),
	})
	return nil
}

// RecordSpend adds spend to an active campaign. Crossing the total budget
// additionally buffers a CampaignBudgetExceeded event after the spend event,
// in that order, under a single version bump.
func (c *Campaign) RecordSpend(amountCents int64) error {
	if amountCents <= 0 {
		return &BusinessRuleViolation{
			Rule:    "campaign.spend_amount_positive",
			Details: map[string]any{"amount_cents": amountCents},
		}
	}
	if c.status != CampaignStatusActive {
		return &BusinessRuleViolation{
			Rule:    "campaign.not_active",
			Details: map[string]any{"status": string(c.status)},
		}
	}

	wasOverBudget := c.spendCents > c.budget.TotalCents
	c.spendCents += amountCents
	c.bumpVersion()
	c.record("CampaignSpendRecorded", map[string]any{
		"amount_cents": amountCents,
		"spend_cents":  c.spendCents,
	})
	if !wasOverBudget && c.spendCents > c.budget.TotalCents {
		c.record("CampaignBudgetExceeded", map[string]any{
			"budget_total_cents": c.budget.TotalCents,
			"spend_cents":        c.spendCents,
		})
	}
	return nil
}

// Reschedule replaces the run window of a not-yet-running campaign when the
// guarding specification accepts the new schedule.
func (c *Campaign) Reschedule(ctx context.Context, guard Specification[Schedule], schedule Schedule) error {
	if c.status != CampaignStatusDraft && c.status != CampaignStatusScheduled {
		return &BusinessRuleViolation{
			Rule:    "campaign.already_running",
			Details: map[string]any{"status": string(c.status)},
		}
	}
	ok, err := guard.IsSatisfiedBy(ctx, schedule)
	if err != nil {
		return err
	}
	if !ok {
		return &BusinessRuleViolation{
			Rule: "campaign.invalid_schedule",
			Details: map[string]any{
				"starts_at": schedule.StartsAt,
				"ends_at":   schedule.EndsAt,
			},
		}
	}
	c.schedule = schedule
	c.bumpVersion()
	c.record("CampaignRescheduled", map[string]any{
		"starts_at": schedule.StartsAt.UTC(),
		"ends_at":   schedule.EndsAt.UTC(),
	})
	return nil
}

// CampaignSnapshot is the persisted shape of a campaign.
type CampaignSnapshot struct {
	ID         string
	TenantID   string
	Name       string
	Type       CampaignType
	Objective  string
	Budget     Budget
	Schedule   Schedule
	Status     CampaignStatus
	SpendCents int64
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Snapshot exports the campaign's persisted fields.
func (c *Campaign) Snapshot() CampaignSnapshot {
	return CampaignSnapshot{
		ID:         c.ID(),
		TenantID:   c.TenantID(),
		Name:       c.name,
		Type:       c.ctype,
		Objective:  c.objective,
		Budget:     c.budget,
		Schedule:   c.schedule,
		Status:     c.status,
		SpendCents: c.spendCents,
		Version:    c.Version(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
}

// CampaignFromSnapshot rehydrates a campaign with an empty event buffer.
func CampaignFromSnapshot(s CampaignSnapshot) *Campaign {
	return &Campaign{
		AggregateRoot: rehydrateRoot(AggregateTypeCampaign, s.ID, s.TenantID, s.Version, s.CreatedAt, s.UpdatedAt),
		name:          s.Name,
		ctype:         s.Type,
		objective:     s.Objective,
		budget:        s.Budget,
		schedule:      s.Schedule,
		status:        s.Status,
		spendCents:    s.SpendCents,
	}
}

// ScheduleIsValid passes for windows that end after they start and end in
// the future. Now is overridable for tests; nil means time.Now.
type ScheduleIsValid struct {
	Now func() time.Time
}

func (s ScheduleIsValid) IsSatisfiedBy(_ context.Context, schedule Schedule) (bool, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if !schedule.StartsAt.Before(schedule.EndsAt) {
		return false, nil
	}
	return schedule.EndsAt.After(now()), nil
}
