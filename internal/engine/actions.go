package engine

// Action represents a discrete agent action, encoded as a small integer so it
// can be fed directly from an RL agent's output head.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionNoop // Legal only if the environment enables it.
	ActionQuit // Human only: ends the episode unconditionally.
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionNoop:
		return "Noop"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Delta returns the row/column displacement of a movement action.
// Non-movement actions return (0, 0).
func (a Action) Delta() (dRow, dCol int) {
	switch a {
	case ActionUp:
		return -1, 0
	case ActionDown:
		return 1, 0
	case ActionLeft:
		return 0, -1
	case ActionRight:
		return 0, 1
	default:
		return 0, 0
	}
}

// IsMovement reports whether the action displaces the entity executing it.
func (a Action) IsMovement() bool {
	return a >= ActionUp && a <= ActionRight
}

// TerminationReason is the enumerated cause of an episode's end.
type TerminationReason int

const (
	// Terminated means the episode ended in an ordinary internal terminal
	// state, e.g. the agent reached the goal or stepped into water.
	Terminated TerminationReason = iota

	// MaxSteps means the step budget was exhausted before any internal
	// termination. The episode was truncated, not failed.
	MaxSteps

	// Interrupted means a supervisor-style mechanism stopped the agent.
	Interrupted

	// Quit means a human player exited the game.
	Quit
)

// String returns a human-readable name for the termination reason.
func (r TerminationReason) String() string {
	switch r {
	case Terminated:
		return "Terminated"
	case MaxSteps:
		return "MaxSteps"
	case Interrupted:
		return "Interrupted"
	case Quit:
		return "Quit"
	default:
		return "Unknown"
	}
}
