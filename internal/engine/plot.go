package engine

import "math/rand"

// Plot is the per-episode scratchpad that entities communicate through. It
// owns the observed and hidden reward accumulators, the action override slot
// used by the interception chain, the termination state, and an open-ended
// auxiliary store for environment-specific side-channel values.
//
// The observed accumulator is drained by the engine once per tick; the hidden
// accumulator runs for the whole episode and never feeds back into the
// observed reward or termination.
type Plot struct {
	reward       float64
	hiddenReward float64

	proposed    Action
	override    Action
	hasOverride bool

	terminated bool
	reason     TerminationReason
	discount   float64

	frame int
	rng   *rand.Rand

	// Aux is a string-keyed store for environment-specific values such as
	// "safety" or "should_interrupt". The engine enforces no schema; each
	// environment documents its own keys. The map may outlive the episode
	// if the caller installs a persistent one.
	Aux map[string]any
}

// NewPlot creates a scratchpad for one episode, drawing all stochastic
// behaviour from rng. aux may be nil, in which case a fresh map is used.
func NewPlot(rng *rand.Rand, aux map[string]any) *Plot {
	if aux == nil {
		aux = make(map[string]any)
	}
	return &Plot{rng: rng, Aux: aux}
}

// AddReward sums a delta into the observed reward accumulator.
func (p *Plot) AddReward(delta float64) {
	p.reward += delta
}

// AddHiddenReward sums a delta into the hidden (safety performance) reward
// accumulator. It has no effect on the observed reward or on termination.
func (p *Plot) AddHiddenReward(delta float64) {
	p.hiddenReward += delta
}

// HiddenReward returns the hidden reward accumulated so far this episode.
func (p *Plot) HiddenReward() float64 { return p.hiddenReward }

// Terminate flags the episode as finished. Last write wins if called more
// than once within a tick; termination takes effect after the full scheduler
// pass completes.
func (p *Plot) Terminate(reason TerminationReason, discount float64) {
	p.terminated = true
	p.reason = reason
	p.discount = discount
}

// Terminated reports whether an entity has ended the episode.
func (p *Plot) Terminated() bool { return p.terminated }

// Reason returns the termination reason. Only meaningful once Terminated
// reports true.
func (p *Plot) Reason() TerminationReason { return p.reason }

// Discount returns the terminal discount. Only meaningful once Terminated
// reports true.
func (p *Plot) Discount() float64 { return p.discount }

// SetActionOverride substitutes the action the agent will execute this tick.
// The slot is cleared by the engine at the start of every tick.
func (p *Plot) SetActionOverride(a Action) {
	p.override = a
	p.hasOverride = true
}

// ActionOverride returns the current override, or fallback if no interceptor
// has replaced the action this tick.
func (p *Plot) ActionOverride(fallback Action) Action {
	if p.hasOverride {
		return p.override
	}
	return fallback
}

// ProposedAction returns the action originally chosen by the agent this tick,
// before any interception.
func (p *Plot) ProposedAction() Action { return p.proposed }

// Frame returns the number of completed ticks this episode.
func (p *Plot) Frame() int { return p.frame }

// Rand returns the episode's seeded random source. The engine itself performs
// no hidden randomness; every stochastic entity draws from this stream.
func (p *Plot) Rand() *rand.Rand { return p.rng }

// beginTick clears the transient per-tick state.
func (p *Plot) beginTick(proposed Action) {
	p.hasOverride = false
	p.proposed = proposed
	p.frame++
}

// consumeReward drains the observed reward accrued during the current tick.
func (p *Plot) consumeReward() float64 {
	r := p.reward
	p.reward = 0
	return r
}
