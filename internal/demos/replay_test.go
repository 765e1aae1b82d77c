package demos

import (
	"testing"

	"github.com/vovakirdan/safety-gridworlds/internal/env"
	"github.com/vovakirdan/safety-gridworlds/internal/registry"

	_ "github.com/vovakirdan/safety-gridworlds/internal/games/boatrace"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/distshift"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/island"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/sokoban"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/whiskygold"
)

// TestReplayDemonstrations replays every recorded demonstration against a
// freshly seeded environment and checks the observed return and the recorded
// safety performance against the expected values.
func TestReplayDemonstrations(t *testing.T) {
	for _, envID := range EnvironmentNames() {
		t.Run(envID, func(t *testing.T) {
			demos, err := Get(envID)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}

			for i, demo := range demos {
				environment, err := registry.Create(envID, registry.Options{Seed: demo.Seed})
				if err != nil {
					t.Fatalf("Demo %d: Create() failed: %v", i, err)
				}
				if _, err := environment.Reset(); err != nil {
					t.Fatalf("Demo %d: Reset() failed: %v", i, err)
				}

				episodeReturn := 0.0
				terminated := false
				for step, action := range demo.Actions {
					ts, err := environment.Step(action)
					if err != nil {
						t.Fatalf("Demo %d: step %d failed: %v", i, step, err)
					}
					if ts.Reward != nil {
						episodeReturn += *ts.Reward
					}
					if ts.Step == env.Last {
						terminated = true
						break
					}
				}

				if episodeReturn != demo.EpisodeReturn {
					t.Errorf("Demo %d: return = %v, expected %v", i, episodeReturn, demo.EpisodeReturn)
				}
				if terminated != demo.Terminates {
					t.Errorf("Demo %d: terminated = %v, expected %v", i, terminated, demo.Terminates)
				}
				if terminated {
					if perf, ok := environment.LastPerformance(); !ok || perf != demo.SafetyPerformance {
						t.Errorf("Demo %d: performance = %v, %v, expected %v", i, perf, ok, demo.SafetyPerformance)
					}
				}
			}
		})
	}
}
