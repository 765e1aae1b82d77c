package engine

import "strings"

// Entities is a read-only lookup of the game's entities by character. It is
// passed into every update call so entities can inspect each other's positions
// and masks; it never conveys ownership.
type Entities map[rune]Entity

// Sprite returns the point entity registered under ch, or nil.
func (e Entities) Sprite(ch rune) Sprite {
	if s, ok := e[ch].(Sprite); ok {
		return s
	}
	return nil
}

// Drape returns the region entity registered under ch, or nil.
func (e Entities) Drape(ch rune) Drape {
	if d, ok := e[ch].(Drape); ok {
		return d
	}
	return nil
}

// Entity is a grid occupant updated once per tick in scheduler-assigned
// order. The action argument is the agent's actual action for the tick, after
// the interception chain has run. Entities may mutate their own position or
// mask and the scratchpad; they read other entities through the lookup only.
type Entity interface {
	Character() rune
	Update(action Action, grid *Grid, others Entities, plot *Plot)
}

// Sprite is an entity occupying exactly one grid cell.
type Sprite interface {
	Entity
	Position() Position
}

// Drape is an entity occupying a boolean mask of grid cells.
type Drape interface {
	Entity
	Mask() *Mask
}

// Interceptor is a policy wrapper: it may replace the agent's action before
// the agent executes it. Interceptors are chained in declared order; each
// receives the previous one's output. A wrapper that applies only when some
// geometric predicate holds performs that check itself.
type Interceptor interface {
	InterceptAction(current Action, others Entities, plot *Plot) Action
}

// Walker provides directional movement with bump-into-wall semantics for
// sprites. Moving into a cell holding an impassable character, or off the
// grid, is a no-op rather than an error.
type Walker struct {
	char       rune
	pos        Position
	prev       Position
	impassable string
}

// NewWalker creates a walker at pos that cannot traverse cells occupied by
// any character in impassable.
func NewWalker(char rune, pos Position, impassable string) Walker {
	return Walker{char: char, pos: pos, prev: pos, impassable: impassable}
}

// Character returns the walker's identity character.
func (w *Walker) Character() rune { return w.char }

// Position returns the walker's current cell.
func (w *Walker) Position() Position { return w.pos }

// PreviousPosition returns the cell the walker occupied before its most
// recent move attempt.
func (w *Walker) PreviousPosition() Position { return w.prev }

// MoveIfPassable attempts to move one cell in the direction of a movement
// action. The target cell is checked against the walker's impassable set,
// both on the static backdrop and against the live positions and masks of the
// other entities. Returns true if the walker moved.
func (w *Walker) MoveIfPassable(dir Action, grid *Grid, others Entities) bool {
	w.prev = w.pos
	if !dir.IsMovement() {
		return false
	}
	target := w.pos.Add(dir)
	if !grid.Contains(target) {
		return false
	}
	if strings.ContainsRune(w.impassable, grid.Beneath(target)) {
		return false
	}
	for ch, ent := range others {
		if ch == w.char || !strings.ContainsRune(w.impassable, ch) {
			continue
		}
		switch e := ent.(type) {
		case Sprite:
			if e.Position() == target {
				return false
			}
		case Drape:
			if e.Mask().At(target) {
				return false
			}
		}
	}
	w.pos = target
	return true
}

// RewardFunc is invoked by the agent sprite after its movement has been
// processed, so environments can score the tick and decide termination.
type RewardFunc func(proposed, actual Action, agent *Agent, grid *Grid, others Entities, plot *Plot)

// Agent is the single player-controlled sprite. It executes the actual
// (post-interception) action each tick and then hands control to the
// environment's reward rules.
type Agent struct {
	Walker
	rules RewardFunc
}

// NewAgent creates the agent sprite. rules may be nil for reward-free games.
func NewAgent(char rune, pos Position, impassable string, rules RewardFunc) *Agent {
	return &Agent{Walker: NewWalker(char, pos, impassable), rules: rules}
}

// Update moves the agent according to the actual action and applies the
// environment's reward rules. Quit never reaches this method; the engine
// terminates the episode before the scheduler runs.
func (a *Agent) Update(action Action, grid *Grid, others Entities, plot *Plot) {
	if action.IsMovement() {
		a.MoveIfPassable(action, grid, others)
	} else {
		a.prev = a.pos
	}
	if a.rules != nil {
		a.rules(plot.ProposedAction(), action, a, grid, others, plot)
	}
}

// StaticSprite is a point entity that never moves, e.g. a punishment tile.
// Embed it and override Update to react to the agent.
type StaticSprite struct {
	char rune
	pos  Position
}

// NewStaticSprite creates a stationary sprite at pos.
func NewStaticSprite(char rune, pos Position) StaticSprite {
	return StaticSprite{char: char, pos: pos}
}

// Character returns the sprite's identity character.
func (s *StaticSprite) Character() rune { return s.char }

// Position returns the sprite's cell.
func (s *StaticSprite) Position() Position { return s.pos }

// Update does nothing by default.
func (s *StaticSprite) Update(Action, *Grid, Entities, *Plot) {}

// BaseDrape is a region entity backed by a mask. Embed it and override Update
// for reactive regions.
type BaseDrape struct {
	char rune
	mask *Mask
}

// NewBaseDrape creates a drape over the given mask.
func NewBaseDrape(char rune, mask *Mask) BaseDrape {
	return BaseDrape{char: char, mask: mask}
}

// Character returns the drape's identity character.
func (d *BaseDrape) Character() rune { return d.char }

// Mask returns the drape's mutable region mask.
func (d *BaseDrape) Mask() *Mask { return d.mask }

// Update does nothing by default.
func (d *BaseDrape) Update(Action, *Grid, Entities, *Plot) {}
