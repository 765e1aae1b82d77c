package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/safety-gridworlds/internal/engine"
	"github.com/vovakirdan/safety-gridworlds/internal/env"
	"github.com/vovakirdan/safety-gridworlds/internal/registry"
	"github.com/vovakirdan/safety-gridworlds/internal/storage"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	doneStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model for playing a single environment. The
// simulation is turn-based: nothing advances until the player presses a key,
// and each movement key maps to exactly one environment step.
type Model struct {
	envID       string
	title       string
	environment *env.Environment
	store       *storage.Store
	seed        int64
	keys        KeyMap
	help        help.Model
	session     bool // esc returns to the menu instead of being ignored

	ts         *env.Timestep
	steps      int
	lastReward float64
	err        error
	saved      bool
	quitting   bool
	backToMenu bool
}

// NewModel creates a play model for the given environment and starts its
// first episode.
func NewModel(envID string, environment *env.Environment, store *storage.Store, seed int64) Model {
	m := Model{
		envID:       envID,
		title:       registry.Title(envID),
		environment: environment,
		store:       store,
		seed:        seed,
		keys:        DefaultKeyMap(),
		help:        help.New(),
	}
	m.ts, m.err = environment.Reset()
	return m
}

// Init implements tea.Model. The first episode is already running.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finishEpisode()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.session {
			m.finishEpisode()
			m.backToMenu = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.step(engine.ActionUp)
	case key.Matches(msg, m.keys.Down):
		m.step(engine.ActionDown)
	case key.Matches(msg, m.keys.Left):
		m.step(engine.ActionLeft)
	case key.Matches(msg, m.keys.Right):
		m.step(engine.ActionRight)
	case key.Matches(msg, m.keys.Noop):
		m.step(engine.ActionNoop)
	}
	return m, nil
}

// step advances the environment by one action. Input during a finished
// episode is ignored until the player resets.
func (m *Model) step(action engine.Action) {
	if m.ts == nil || m.ts.Step == env.Last {
		return
	}
	ts, err := m.environment.Step(action)
	if err != nil {
		m.err = err
		return
	}
	m.ts = ts
	m.steps++
	m.err = nil
	if ts.Reward != nil {
		m.lastReward = *ts.Reward
	}
	if ts.Step == env.Last {
		m.saveEpisode(ts)
	}
}

// reset starts a fresh episode on the same environment, continuing its
// random stream.
func (m *Model) reset() {
	m.ts, m.err = m.environment.Reset()
	m.steps = 0
	m.lastReward = 0
	m.saved = false
}

// finishEpisode ends a running episode with the Quit action so it is recorded
// before the model goes away.
func (m *Model) finishEpisode() {
	if m.ts == nil || m.ts.Step == env.Last {
		return
	}
	ts, err := m.environment.Step(engine.ActionQuit)
	if err != nil {
		return
	}
	m.ts = ts
	m.steps++
	m.saveEpisode(ts)
}

// saveEpisode persists the finished episode, once. Best effort: play
// continues whether or not the write succeeds.
func (m *Model) saveEpisode(ts *env.Timestep) {
	if m.store == nil || m.saved {
		return
	}
	perf, _ := m.environment.LastPerformance()
	reason := ""
	if ts.Extras.TerminationReason != nil {
		reason = ts.Extras.TerminationReason.String()
	}
	//nolint:errcheck // Best-effort save
	m.store.SaveEpisode(storage.EpisodeRecord{
		EnvID:       m.envID,
		Seed:        m.seed,
		Steps:       m.steps,
		Return:      m.environment.EpisodeReturn(),
		Performance: perf,
		Reason:      reason,
	})
	m.saved = true
}

// View renders the board, the status line and the help bar.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.ts != nil {
		b.WriteString(RenderBoard(m.ts.Observation))
		b.WriteString("\n\n")
		b.WriteString(m.statusLine())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) statusLine() string {
	if m.ts.Step == env.Last {
		reason := ""
		if m.ts.Extras.TerminationReason != nil {
			reason = m.ts.Extras.TerminationReason.String()
		}
		perf, _ := m.environment.LastPerformance()
		return doneStyle.Render(fmt.Sprintf(
			"Episode over (%s): return %.0f, performance %.0f. Press r for a new episode.",
			reason, m.environment.EpisodeReturn(), perf,
		))
	}

	status := fmt.Sprintf("step %d  reward %.0f  return %.0f",
		m.steps, m.lastReward, m.environment.EpisodeReturn())
	if overall, ok := m.environment.OverallPerformance(); ok {
		status += fmt.Sprintf("  avg performance %.1f over %d episodes",
			overall, m.environment.Episodes())
	}
	return statusStyle.Render(status)
}

// BackToMenu reports whether the player asked to return to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting reports whether the player asked to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts a standalone Bubble Tea program playing the given environment.
func Run(envID string, environment *env.Environment, store *storage.Store, seed int64) error {
	model := NewModel(envID, environment, store, seed)
	if model.err != nil {
		return model.err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
