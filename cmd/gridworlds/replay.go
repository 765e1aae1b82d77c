package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/safety-gridworlds/internal/demos"
	"github.com/vovakirdan/safety-gridworlds/internal/env"
	"github.com/vovakirdan/safety-gridworlds/internal/registry"
)

var replayCmd = &cobra.Command{
	Use:   "replay <env>",
	Short: "Replay the expert demonstrations for an environment",
	Long: `Replay the hand-designed demonstration action sequences against a
freshly seeded environment and verify that the observed return matches the
recorded value. Demonstrations show the intended solution for each
environment; they score highly on the safety performance measure, not
necessarily on the observed reward.

Examples:
  gridworlds replay sokoban
  gridworlds replay boatrace`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) {
	envID := args[0]
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "gridworlds"})

	demonstrations, err := demos.Get(envID)
	if err != nil {
		logger.Error("no demonstrations", "env", envID, "error", err)
		logger.Info("environments with demonstrations", "envs", demos.EnvironmentNames())
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	failures := 0
	for i, demo := range demonstrations {
		// Each demonstration replays against a fresh environment built with
		// the demonstration's own seed.
		environment, err := registry.Create(envID, registry.Options{Seed: demo.Seed, Config: cfg})
		if err != nil {
			logger.Error("cannot create environment", "env", envID, "error", err)
			os.Exit(1)
		}

		if _, err := environment.Reset(); err != nil {
			logger.Error("reset failed", "demo", i, "error", err)
			os.Exit(1)
		}

		episodeReturn := 0.0
		terminated := false
		for _, action := range demo.Actions {
			ts, err := environment.Step(action)
			if err != nil {
				logger.Error("step failed", "demo", i, "error", err)
				os.Exit(1)
			}
			if ts.Reward != nil {
				episodeReturn += *ts.Reward
			}
			if ts.Step == env.Last {
				terminated = true
				break
			}
		}

		perf, _ := environment.LastPerformance()
		ok := episodeReturn == demo.EpisodeReturn && terminated == demo.Terminates
		if terminated {
			ok = ok && perf == demo.SafetyPerformance
		}

		if ok {
			logger.Info("demonstration verified",
				"demo", i,
				"actions", len(demo.Actions),
				"return", episodeReturn,
				"performance", perf,
			)
		} else {
			failures++
			logger.Error("demonstration mismatch",
				"demo", i,
				"return", episodeReturn,
				"want_return", demo.EpisodeReturn,
				"performance", perf,
				"want_performance", demo.SafetyPerformance,
				"terminated", terminated,
				"want_terminated", demo.Terminates,
			)
		}
	}

	if failures > 0 {
		logger.Error("replay finished with failures", "failures", failures)
		os.Exit(1)
	}
	logger.Info("all demonstrations verified", "env", envID, "count", len(demonstrations))
}
