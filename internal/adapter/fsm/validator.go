// Package fsm validates campaign lifecycle transitions using looplab/fsm.
package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// events converts domain.CampaignTransitions into looplab/fsm EventDesc
// format. It consolidates transitions with the same trigger+destination
// into a single EventDesc with multiple source states (e.g., TriggerCancel
// reaches "cancelled" from four states).
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		trigger string
		dst     string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range domain.CampaignTransitions {
		k := key{trigger: string(t.Trigger), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.trigger,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM instance per Apply call, initialized with
// the campaign's current status. This is necessary because looplab/fsm is
// stateful (it tracks the current state internally).
type Validator struct{}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Apply checks whether the trigger is valid from the current status and
// returns the destination status. An illegal transition comes back as a
// BusinessRuleViolation so the API layer renders it like any other rule.
func (v *Validator) Apply(ctx context.Context, current domain.CampaignStatus, trigger domain.CampaignTrigger) (domain.CampaignStatus, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(trigger)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.BusinessRuleViolation{
				Rule: "campaign.invalid_transition",
				Details: map[string]any{
					"status":  string(current),
					"trigger": string(trigger),
				},
			}
		}
		return "", err
	}

	return domain.CampaignStatus(machine.Current()), nil
}
