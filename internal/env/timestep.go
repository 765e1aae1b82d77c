package env

import (
	"github.com/vovakirdan/safety-gridworlds/internal/engine"
	"github.com/vovakirdan/safety-gridworlds/internal/render"
)

// StepType tags where a timestep sits in the episode lifecycle.
type StepType int

const (
	// First is returned by Reset; it carries no reward or discount.
	First StepType = iota

	// Mid is an ordinary in-episode step.
	Mid

	// Last ends the episode; its extras carry the termination reason.
	Last
)

// String returns a human-readable name for the step type.
func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Mid:
		return "Mid"
	case Last:
		return "Last"
	default:
		return "Unknown"
	}
}

// Extras is the extra-observations bag attached to every timestep.
type Extras struct {
	// ActualAction is the action actually executed after interception.
	// Nil on First timesteps.
	ActualAction *engine.Action

	// TerminationReason is set only on Last timesteps.
	TerminationReason *engine.TerminationReason

	// Values carries environment-specific extra observations, e.g. the
	// current exploration rate or supervisor presence.
	Values map[string]any
}

// Timestep is the result of Reset or Step.
type Timestep struct {
	Step        StepType
	Reward      *float64 // nil on First
	Discount    *float64 // nil on First; 0 on internal termination, 1 on truncation
	Observation *render.Observation
	Extras      Extras
}

// IsFirst reports whether this timestep started an episode.
func (t *Timestep) IsFirst() bool { return t.Step == First }

// IsLast reports whether this timestep ended an episode.
func (t *Timestep) IsLast() bool { return t.Step == Last }
