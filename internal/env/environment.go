// Package env owns the episode lifecycle around the gridworld engine: the
// reset/step protocol, observation distillation, the dual reward channel and
// the cross-episode performance history.
package env

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/safety-gridworlds/internal/engine"
	"github.com/vovakirdan/safety-gridworlds/internal/render"
)

// Protocol-misuse errors. Within-episode safety events (hazard contact,
// interruption, timeout) are never errors; they surface as ordinary
// termination reasons in the timestep.
var (
	// ErrNotStarted is returned by Step before the first Reset.
	ErrNotStarted = errors.New("env: step called before reset")

	// ErrEpisodeDone is returned by Step after a Last timestep until the
	// caller resets.
	ErrEpisodeDone = errors.New("env: episode finished, call reset")
)

// DefaultMaxIterations is the step budget applied when none is configured.
const DefaultMaxIterations = 100

// GameFactory builds a fresh engine episode. rng is the environment's seeded
// random stream; aux is the persistent auxiliary store shared across the
// environment's episodes.
type GameFactory func(rng *rand.Rand, aux map[string]any) (*engine.Game, error)

// PerformanceFunc computes the episode performance record appended to the
// history at every Last timestep. The default records the episode return;
// environments with a hidden reward typically record that instead.
type PerformanceFunc func(episodeReturn, hiddenReward float64) float64

// Settings is the constructor-time configuration surface of an environment.
// It is immutable after New.
type Settings struct {
	Values  render.ValueTable
	Colours render.ColourTable
	Repaint render.Repainter

	// MaxIterations is the per-episode step budget. Zero selects
	// DefaultMaxIterations.
	MaxIterations int

	// EnableNoop extends the legal action range to include Noop.
	EnableNoop bool

	// Seed controls every stochastic choice the environment's episodes make.
	Seed int64

	// Performance overrides the episode performance record; nil records the
	// episode return.
	Performance PerformanceFunc

	// Overall overrides the cross-episode aggregate; nil takes the
	// arithmetic mean of the history.
	Overall func(history []float64) float64

	// ExtraObservations supplies environment-specific values attached to
	// every timestep's extras bag. May be nil.
	ExtraObservations func(aux map[string]any) map[string]any
}

type lifecycle int

const (
	uninitialized lifecycle = iota
	ready
	done
)

// Environment drives a game factory through the reset/step protocol and keeps
// the cross-episode performance history for the life of the instance. It is
// not safe for concurrent use; the simulation model is strictly synchronous.
type Environment struct {
	factory  GameFactory
	settings Settings
	renderer *render.Renderer
	rng      *rand.Rand
	aux      map[string]any

	state         lifecycle
	game          *engine.Game
	steps         int
	episodeReturn float64
	history       []float64
}

// New validates the settings and builds an environment. No episode exists
// until the first Reset.
func New(factory GameFactory, settings Settings) (*Environment, error) {
	if factory == nil {
		return nil, fmt.Errorf("env: nil game factory")
	}
	if settings.MaxIterations < 0 {
		return nil, fmt.Errorf("env: max iterations must be positive, got %d", settings.MaxIterations)
	}
	if settings.MaxIterations == 0 {
		settings.MaxIterations = DefaultMaxIterations
	}
	renderer, err := render.NewRenderer(settings.Values, settings.Colours, settings.Repaint)
	if err != nil {
		return nil, err
	}
	return &Environment{
		factory:  factory,
		settings: settings,
		renderer: renderer,
		rng:      rand.New(rand.NewSource(settings.Seed)),
		aux:      make(map[string]any),
	}, nil
}

// Reset discards the prior episode, rebuilds the game from the factory and
// returns a First timestep with nil reward and discount.
func (e *Environment) Reset() (*Timestep, error) {
	game, err := e.factory(e.rng, e.aux)
	if err != nil {
		return nil, fmt.Errorf("env: game factory: %w", err)
	}
	e.game = game
	e.steps = 0
	e.episodeReturn = 0
	e.state = ready

	obs, err := e.renderer.Render(game.Board())
	if err != nil {
		return nil, err
	}
	return &Timestep{
		Step:        First,
		Observation: obs,
		Extras:      Extras{Values: e.extraObservations()},
	}, nil
}

// Step applies one action: it runs exactly one scheduler pass, accumulates
// the tick's reward into the episode return, applies the step budget, renders
// the observation and, exactly once when the episode ends, records the
// episode performance.
func (e *Environment) Step(action engine.Action) (*Timestep, error) {
	switch e.state {
	case uninitialized:
		return nil, ErrNotStarted
	case done:
		return nil, ErrEpisodeDone
	}
	if err := e.checkAction(action); err != nil {
		return nil, err
	}

	reward, terminated := e.game.Play(action)
	e.steps++
	e.episodeReturn += reward

	plot := e.game.Plot()
	step := Mid
	var discount float64 = 1.0
	var reason engine.TerminationReason

	switch {
	case terminated:
		step = Last
		discount = plot.Discount()
		reason = plot.Reason()
	case e.steps >= e.settings.MaxIterations:
		// Budget exhausted without internal termination: truncated, not
		// failed, hence discount 1.0.
		step = Last
		discount = 1.0
		reason = engine.MaxSteps
	}

	obs, err := e.renderer.Render(e.game.Board())
	if err != nil {
		return nil, err
	}

	actual := e.game.ActualAction()
	ts := &Timestep{
		Step:        step,
		Reward:      &reward,
		Discount:    &discount,
		Observation: obs,
		Extras: Extras{
			ActualAction: &actual,
			Values:       e.extraObservations(),
		},
	}
	if step == Last {
		ts.Extras.TerminationReason = &reason
		e.state = done
		e.recordPerformance()
	}
	return ts, nil
}

// EpisodeReturn returns the summed observed reward of the current episode.
func (e *Environment) EpisodeReturn() float64 { return e.episodeReturn }

// HiddenReward returns the hidden reward accumulated by the current episode,
// or def before the first reset.
func (e *Environment) HiddenReward(def float64) float64 {
	if e.game == nil {
		return def
	}
	return e.game.Plot().HiddenReward()
}

// Game exposes the current episode's engine, mainly for tests and the
// front-end status line. Nil before the first reset.
func (e *Environment) Game() *engine.Game { return e.game }

// Episodes returns the number of completed episodes.
func (e *Environment) Episodes() int { return len(e.history) }

// OverallPerformance returns the aggregate of the per-episode performance
// history, or false if no episode has completed. The history is never pruned
// for the life of the environment.
func (e *Environment) OverallPerformance() (float64, bool) {
	if len(e.history) == 0 {
		return 0, false
	}
	if e.settings.Overall != nil {
		return e.settings.Overall(e.history), true
	}
	sum := 0.0
	for _, p := range e.history {
		sum += p
	}
	return sum / float64(len(e.history)), true
}

// LastPerformance returns the most recent episode's performance record, or
// false if no episode has completed.
func (e *Environment) LastPerformance() (float64, bool) {
	if len(e.history) == 0 {
		return 0, false
	}
	return e.history[len(e.history)-1], true
}

func (e *Environment) recordPerformance() {
	perf := e.episodeReturn
	if e.settings.Performance != nil {
		perf = e.settings.Performance(e.episodeReturn, e.game.Plot().HiddenReward())
	}
	e.history = append(e.history, perf)
}

func (e *Environment) extraObservations() map[string]any {
	if e.settings.ExtraObservations == nil {
		return nil
	}
	return e.settings.ExtraObservations(e.aux)
}

func (e *Environment) checkAction(action engine.Action) error {
	if action == engine.ActionQuit {
		return nil
	}
	last := engine.ActionRight
	if e.settings.EnableNoop {
		last = engine.ActionNoop
	}
	if action < engine.ActionUp || action > last {
		return fmt.Errorf("env: action %d outside legal range [0,%d]", action, last)
	}
	return nil
}

// BaseValues returns the value-table entries common to every environment.
func BaseValues() render.ValueTable {
	return render.ValueTable{'#': 0.0, ' ': 1.0}
}

// BaseColours returns the colour-table entries common to every environment:
// floor, walls, the agent and the goal.
func BaseColours() render.ColourTable {
	return render.ColourTable{
		' ': {R: 858, G: 858, B: 858},
		'#': {R: 599, G: 599, B: 599},
		'A': {R: 0, G: 706, B: 999},
		'G': {R: 0, G: 823, B: 196},
	}
}
