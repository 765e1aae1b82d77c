// Package engine implements the generic gridworld simulation engine shared by
// all safety environments: the entity model, the per-episode scratchpad, the
// phased update scheduler and the action interception chain. It contains no
// I/O and no hidden randomness; everything stochastic flows from the seeded
// random source handed to the episode's Plot.
package engine

import (
	"fmt"
	"math/rand"
)

// Phase is one scheduler phase: the characters of the entities that update in
// it, in declared (stable) order.
type Phase []rune

// GameSpec declares one episode of a game: the level grid, the entities, the
// update schedule and the interception chain. Phase order and interceptor
// order are part of the game's observable contract; changing either changes
// game semantics.
type GameSpec struct {
	Grid *Grid

	// Entities in declared order. The declaration order doubles as the
	// painting z-order unless ZOrder overrides it.
	Entities []Entity

	// Schedule partitions the entity characters into sequential phases.
	// Every entity must appear in exactly one phase. If nil, all entities
	// update in a single phase in declared order.
	Schedule []Phase

	// ZOrder lists entity characters from bottom to top for rendering.
	ZOrder []rune

	// Interceptors is the ordered action interception chain, run before the
	// scheduler each tick.
	Interceptors []Interceptor

	// AgentChar identifies the agent entity.
	AgentChar rune
}

// Game is a single episode of a gridworld simulation. One Play call advances
// the world by exactly one tick.
type Game struct {
	grid         *Grid
	plot         *Plot
	entities     Entities
	order        []rune
	schedule     []Phase
	zOrder       []rune
	interceptors []Interceptor
	agentChar    rune
	actual       Action
}

// NewGame assembles an episode from its spec. The plot's random source is the
// episode's only source of randomness. aux, if non-nil, is installed as the
// plot's auxiliary store so callers can preserve values across episodes.
func NewGame(spec GameSpec, rng *rand.Rand, aux map[string]any) (*Game, error) {
	if spec.Grid == nil {
		return nil, fmt.Errorf("engine: game spec has no grid")
	}
	entities := make(Entities, len(spec.Entities))
	order := make([]rune, 0, len(spec.Entities))
	for _, ent := range spec.Entities {
		ch := ent.Character()
		if _, dup := entities[ch]; dup {
			return nil, fmt.Errorf("engine: duplicate entity character %q", ch)
		}
		entities[ch] = ent
		order = append(order, ch)
	}
	if _, ok := entities[spec.AgentChar]; !ok {
		return nil, fmt.Errorf("engine: agent character %q has no entity", spec.AgentChar)
	}
	schedule := spec.Schedule
	if schedule == nil {
		schedule = []Phase{Phase(order)}
	}
	scheduled := make(map[rune]bool)
	for _, phase := range schedule {
		for _, ch := range phase {
			if _, ok := entities[ch]; !ok {
				return nil, fmt.Errorf("engine: schedule names unknown entity %q", ch)
			}
			if scheduled[ch] {
				return nil, fmt.Errorf("engine: entity %q scheduled twice", ch)
			}
			scheduled[ch] = true
		}
	}
	if len(scheduled) != len(entities) {
		return nil, fmt.Errorf("engine: schedule covers %d of %d entities", len(scheduled), len(entities))
	}
	zOrder := spec.ZOrder
	if zOrder == nil {
		zOrder = order
	}
	for _, ch := range zOrder {
		if _, ok := entities[ch]; !ok {
			return nil, fmt.Errorf("engine: z-order names unknown entity %q", ch)
		}
	}
	return &Game{
		grid:         spec.Grid,
		plot:         NewPlot(rng, aux),
		entities:     entities,
		order:        order,
		schedule:     schedule,
		zOrder:       zOrder,
		interceptors: spec.Interceptors,
		agentChar:    spec.AgentChar,
	}, nil
}

// Grid returns the episode's immutable terrain.
func (g *Game) Grid() *Grid { return g.grid }

// Plot returns the episode's scratchpad.
func (g *Game) Plot() *Plot { return g.plot }

// Entity returns the entity registered under ch, or nil.
func (g *Game) Entity(ch rune) Entity { return g.entities[ch] }

// ActualAction returns the action the agent actually executed on the most
// recent tick, after interception.
func (g *Game) ActualAction() Action { return g.actual }

// Play advances the game by one tick: it clears the override slot, folds the
// proposed action through the interception chain, runs every scheduler phase
// in order, and drains the tick's observed reward. It returns that reward and
// whether the episode has terminated.
//
// Quit is handled before anything else: no interceptor may replace it, no
// entity updates run, and no reward accrues from the tick.
func (g *Game) Play(action Action) (reward float64, done bool) {
	g.plot.beginTick(action)

	if action == ActionQuit {
		g.actual = ActionQuit
		g.plot.Terminate(Quit, 0.0)
		g.plot.consumeReward()
		return 0, true
	}

	actual := action
	for _, ic := range g.interceptors {
		actual = ic.InterceptAction(actual, g.entities, g.plot)
	}
	if actual != action {
		g.plot.SetActionOverride(actual)
	}
	g.actual = actual

	for _, phase := range g.schedule {
		for _, ch := range phase {
			g.entities[ch].Update(actual, g.grid, g.entities, g.plot)
		}
	}

	return g.plot.consumeReward(), g.plot.Terminated()
}

// Board paints the current occupancy view of the grid: the static backdrop
// with drape masks and sprite positions applied in z-order.
func (g *Game) Board() [][]rune {
	board := make([][]rune, g.grid.Rows())
	for r := range board {
		board[r] = make([]rune, g.grid.Cols())
		for c := range board[r] {
			board[r][c] = g.grid.Beneath(Position{Row: r, Col: c})
		}
	}
	for _, ch := range g.zOrder {
		switch ent := g.entities[ch].(type) {
		case Sprite:
			p := ent.Position()
			board[p.Row][p.Col] = ch
		case Drape:
			ent.Mask().Each(func(p Position) {
				board[p.Row][p.Col] = ch
			})
		}
	}
	return board
}

// TerminateEpisode flags an ordinary internal termination with discount 0.
func TerminateEpisode(plot *Plot) {
	plot.Terminate(Terminated, 0.0)
}
