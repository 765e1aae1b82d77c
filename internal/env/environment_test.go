package env

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/vovakirdan/safety-gridworlds/internal/engine"
	"github.com/vovakirdan/safety-gridworlds/internal/render"
)

// corridorFactory builds a one-row world where the goal sits two steps to the
// agent's right. Every step costs 1, reaching the goal pays 50 and ends the
// episode.
func corridorFactory(rng *rand.Rand, aux map[string]any) (*engine.Game, error) {
	grid, err := engine.NewGrid([]string{
		"#####",
		"#A G#",
		"#####",
	}, ' ', "A")
	if err != nil {
		return nil, err
	}

	pos, _ := grid.Find('A')
	agent := engine.NewAgent('A', pos, "#",
		func(_, _ engine.Action, a *engine.Agent, g *engine.Grid, _ engine.Entities, plot *engine.Plot) {
			plot.AddReward(-1)
			plot.AddHiddenReward(-1)
			if g.Beneath(a.Position()) == 'G' {
				plot.AddReward(50)
				plot.Terminate(engine.Terminated, 0.0)
			}
		})

	return engine.NewGame(engine.GameSpec{
		Grid:      grid,
		Entities:  []engine.Entity{agent},
		AgentChar: 'A',
	}, rng, aux)
}

func corridorSettings(seed int64) Settings {
	values := BaseValues()
	values['A'] = 2.0
	values['G'] = 3.0
	return Settings{
		Values:  values,
		Colours: BaseColours(),
		Seed:    seed,
	}
}

func newCorridor(t *testing.T, settings Settings) *Environment {
	t.Helper()
	environment, err := New(corridorFactory, settings)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return environment
}

func TestStepBeforeReset(t *testing.T) {
	environment := newCorridor(t, corridorSettings(0))

	if _, err := environment.Step(engine.ActionRight); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Step() before Reset() returned %v, expected ErrNotStarted", err)
	}
}

func TestResetReturnsFirstTimestep(t *testing.T) {
	environment := newCorridor(t, corridorSettings(0))

	ts, err := environment.Reset()
	if err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if ts.Step != First {
		t.Errorf("Step = %v, expected First", ts.Step)
	}
	// First timesteps carry no reward or discount.
	if ts.Reward != nil || ts.Discount != nil {
		t.Error("First timestep should have nil reward and discount")
	}
	if ts.Observation == nil {
		t.Fatal("First timestep should carry an observation")
	}
	// The agent cell renders with the agent's value, not the floor's.
	if ts.Observation.Board[1][1] != 2.0 {
		t.Errorf("Agent cell value = %v, expected 2", ts.Observation.Board[1][1])
	}
}

func TestEpisodeTermination(t *testing.T) {
	environment := newCorridor(t, corridorSettings(0))
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	ts, err := environment.Step(engine.ActionRight)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if ts.Step != Mid || *ts.Reward != -1 || *ts.Discount != 1.0 {
		t.Errorf("Mid step = %v reward %v discount %v", ts.Step, *ts.Reward, *ts.Discount)
	}

	ts, err = environment.Step(engine.ActionRight)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if ts.Step != Last {
		t.Fatalf("Step = %v, expected Last at the goal", ts.Step)
	}
	if *ts.Reward != 49 {
		t.Errorf("Goal reward = %v, expected 49", *ts.Reward)
	}
	// Internal termination zeroes the discount.
	if *ts.Discount != 0.0 {
		t.Errorf("Discount = %v, expected 0 on internal termination", *ts.Discount)
	}
	if ts.Extras.TerminationReason == nil || *ts.Extras.TerminationReason != engine.Terminated {
		t.Error("Expected termination reason Terminated")
	}
	if environment.EpisodeReturn() != 48 {
		t.Errorf("EpisodeReturn() = %v, expected 48", environment.EpisodeReturn())
	}

	// Stepping past the end is a protocol error until the next reset.
	if _, err := environment.Step(engine.ActionRight); !errors.Is(err, ErrEpisodeDone) {
		t.Errorf("Step() after Last returned %v, expected ErrEpisodeDone", err)
	}
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() after episode end failed: %v", err)
	}
}

func TestMaxIterationsTruncation(t *testing.T) {
	settings := corridorSettings(0)
	settings.MaxIterations = 3
	environment := newCorridor(t, settings)
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	var ts *Timestep
	var err error
	for i := 0; i < 3; i++ {
		// Bump the left wall forever.
		ts, err = environment.Step(engine.ActionLeft)
		if err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}

	if ts.Step != Last {
		t.Fatalf("Step = %v, expected Last at the step budget", ts.Step)
	}
	// Truncation is not failure: the discount stays 1.0.
	if *ts.Discount != 1.0 {
		t.Errorf("Discount = %v, expected 1.0 on truncation", *ts.Discount)
	}
	if ts.Extras.TerminationReason == nil || *ts.Extras.TerminationReason != engine.MaxSteps {
		t.Error("Expected termination reason MaxSteps")
	}
}

func TestActionLegality(t *testing.T) {
	settings := corridorSettings(0)
	environment := newCorridor(t, settings)
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	// Noop is illegal unless enabled.
	if _, err := environment.Step(engine.ActionNoop); err == nil {
		t.Error("Expected error for Noop without EnableNoop")
	}
	if _, err := environment.Step(engine.Action(42)); err == nil {
		t.Error("Expected error for out-of-range action")
	}

	settings.EnableNoop = true
	environment = newCorridor(t, settings)
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if _, err := environment.Step(engine.ActionNoop); err != nil {
		t.Errorf("Noop with EnableNoop failed: %v", err)
	}
}

func TestQuitAlwaysLegal(t *testing.T) {
	environment := newCorridor(t, corridorSettings(0))
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	ts, err := environment.Step(engine.ActionQuit)
	if err != nil {
		t.Fatalf("Step(Quit) failed: %v", err)
	}
	if ts.Step != Last {
		t.Fatalf("Step = %v, expected Last after Quit", ts.Step)
	}
	if *ts.Reward != 0 || *ts.Discount != 0 {
		t.Errorf("Quit reward/discount = %v/%v, expected 0/0", *ts.Reward, *ts.Discount)
	}
	if ts.Extras.TerminationReason == nil || *ts.Extras.TerminationReason != engine.Quit {
		t.Error("Expected termination reason Quit")
	}
}

func TestPerformanceHistory(t *testing.T) {
	settings := corridorSettings(0)
	// Record the hidden reward, not the return.
	settings.Performance = func(_, hidden float64) float64 { return hidden }
	environment := newCorridor(t, settings)

	if _, ok := environment.LastPerformance(); ok {
		t.Error("LastPerformance() should report nothing before the first episode")
	}
	if _, ok := environment.OverallPerformance(); ok {
		t.Error("OverallPerformance() should report nothing before the first episode")
	}

	playEpisode := func(steps int) {
		if _, err := environment.Reset(); err != nil {
			t.Fatalf("Reset() failed: %v", err)
		}
		for i := 0; i < steps; i++ {
			if _, err := environment.Step(engine.ActionRight); err != nil {
				t.Fatalf("Step() failed: %v", err)
			}
		}
	}

	playEpisode(2) // straight to the goal: hidden reward -2
	if perf, ok := environment.LastPerformance(); !ok || perf != -2 {
		t.Errorf("LastPerformance() = %v, %v, expected -2", perf, ok)
	}

	// A detour costs two extra hidden points.
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	for _, a := range []engine.Action{engine.ActionLeft, engine.ActionLeft, engine.ActionRight, engine.ActionRight} {
		if _, err := environment.Step(a); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}

	if environment.Episodes() != 2 {
		t.Fatalf("Episodes() = %d, expected 2", environment.Episodes())
	}
	if perf, ok := environment.OverallPerformance(); !ok || perf != -3 {
		t.Errorf("OverallPerformance() = %v, %v, expected mean -3", perf, ok)
	}
}

func TestHiddenRewardDoesNotLeak(t *testing.T) {
	environment := newCorridor(t, corridorSettings(0))
	if _, err := environment.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	ts, err := environment.Step(engine.ActionLeft)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if *ts.Reward != -1 {
		t.Errorf("Observed reward = %v, expected -1 regardless of the hidden channel", *ts.Reward)
	}
	if environment.HiddenReward(0) != -1 {
		t.Errorf("HiddenReward() = %v, expected -1", environment.HiddenReward(0))
	}
}

// shiftingFactory places the goal on one of two cells using the episode rng,
// so two environments with the same seed must agree on every episode.
func shiftingFactory(rng *rand.Rand, aux map[string]any) (*engine.Game, error) {
	art := []string{
		"#####",
		"#A  #",
		"#####",
	}
	goalCol := 2 + rng.Intn(2)
	row := []rune(art[1])
	row[goalCol] = 'G'
	art[1] = string(row)

	grid, err := engine.NewGrid(art, ' ', "A")
	if err != nil {
		return nil, err
	}
	pos, _ := grid.Find('A')
	agent := engine.NewAgent('A', pos, "#",
		func(_, _ engine.Action, a *engine.Agent, g *engine.Grid, _ engine.Entities, plot *engine.Plot) {
			plot.AddReward(-1)
			if g.Beneath(a.Position()) == 'G' {
				plot.Terminate(engine.Terminated, 0.0)
			}
		})
	return engine.NewGame(engine.GameSpec{
		Grid:      grid,
		Entities:  []engine.Entity{agent},
		AgentChar: 'A',
	}, rng, aux)
}

func TestDeterminism(t *testing.T) {
	settings := corridorSettings(7)
	build := func() *Environment {
		environment, err := New(shiftingFactory, settings)
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		return environment
	}
	env1, env2 := build(), build()

	for episode := 0; episode < 5; episode++ {
		ts1, err1 := env1.Reset()
		ts2, err2 := env2.Reset()
		if err1 != nil || err2 != nil {
			t.Fatalf("Reset() failed: %v / %v", err1, err2)
		}
		for row := range ts1.Observation.Board {
			for col := range ts1.Observation.Board[row] {
				if ts1.Observation.Board[row][col] != ts2.Observation.Board[row][col] {
					t.Fatalf("Episode %d: same-seed environments diverged at (%d,%d)", episode, row, col)
				}
			}
		}
		// Burn the episode so the next reset consumes fresh randomness.
		for {
			ts, err := env1.Step(engine.ActionRight)
			if err != nil {
				t.Fatalf("Step() failed: %v", err)
			}
			if _, err := env2.Step(engine.ActionRight); err != nil {
				t.Fatalf("Step() failed: %v", err)
			}
			if ts.Step == Last {
				break
			}
		}
	}
}

func TestAuxPersistsAcrossEpisodes(t *testing.T) {
	factory := func(rng *rand.Rand, aux map[string]any) (*engine.Game, error) {
		count, _ := aux["episodes"].(int)
		aux["episodes"] = count + 1
		return corridorFactory(rng, aux)
	}
	settings := corridorSettings(0)
	settings.ExtraObservations = func(aux map[string]any) map[string]any {
		return map[string]any{"episodes": aux["episodes"]}
	}

	environment, err := New(factory, settings)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		ts, err := environment.Reset()
		if err != nil {
			t.Fatalf("Reset() failed: %v", err)
		}
		if got := ts.Extras.Values["episodes"]; got != i {
			t.Errorf("Reset %d: aux episodes = %v, expected %d", i, got, i)
		}
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, corridorSettings(0)); err == nil {
		t.Error("Expected error for nil factory")
	}

	settings := corridorSettings(0)
	settings.MaxIterations = -1
	if _, err := New(corridorFactory, settings); err == nil {
		t.Error("Expected error for negative max iterations")
	}

	settings = corridorSettings(0)
	settings.Values = render.ValueTable{}
	if _, err := New(corridorFactory, settings); err == nil {
		t.Error("Expected error for empty value table")
	}
}
