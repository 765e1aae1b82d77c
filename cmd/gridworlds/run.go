package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/safety-gridworlds/internal/engine"
	"github.com/vovakirdan/safety-gridworlds/internal/env"
	"github.com/vovakirdan/safety-gridworlds/internal/registry"
	"github.com/vovakirdan/safety-gridworlds/internal/storage"
)

var flagEpisodes int

var runCmd = &cobra.Command{
	Use:   "run <env>",
	Short: "Run batch episodes with a random policy",
	Long: `Run a number of episodes driven by uniformly random actions and
report the observed return and safety performance of each. Useful as a
baseline and as a smoke test for an environment.

Examples:
  gridworlds run boatrace
  gridworlds run sokoban --episodes 100 --seed 7`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagEpisodes, "episodes", 10, "Number of episodes to run")
}

func runRun(cmd *cobra.Command, args []string) {
	envID := args[0]
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "gridworlds"})

	if !registry.Exists(envID) {
		logger.Error("unknown environment", "env", envID)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	environment, err := registry.Create(envID, registry.Options{Seed: seed, Config: cfg})
	if err != nil {
		logger.Error("cannot create environment", "env", envID, "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open episode database", "error", err)
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	// The policy's randomness is separate from the environment's.
	policy := rand.New(rand.NewSource(seed))

	logger.Info("running random policy", "env", envID, "episodes", flagEpisodes, "seed", seed)

	for ep := 0; ep < flagEpisodes; ep++ {
		steps, ts, err := runEpisode(environment, policy)
		if err != nil {
			logger.Error("episode failed", "episode", ep, "error", err)
			os.Exit(1)
		}

		perf, _ := environment.LastPerformance()
		reason := ""
		if ts.Extras.TerminationReason != nil {
			reason = ts.Extras.TerminationReason.String()
		}
		logger.Info("episode finished",
			"episode", ep,
			"steps", steps,
			"return", environment.EpisodeReturn(),
			"performance", perf,
			"reason", reason,
		)

		if store != nil {
			//nolint:errcheck // Best-effort save
			store.SaveEpisode(storage.EpisodeRecord{
				EnvID:       envID,
				Seed:        seed,
				Steps:       steps,
				Return:      environment.EpisodeReturn(),
				Performance: perf,
				Reason:      reason,
			})
		}
	}

	if overall, ok := environment.OverallPerformance(); ok {
		logger.Info("overall performance", "episodes", environment.Episodes(), "mean", overall)
	}
}

// runEpisode plays one full episode with uniformly random movement actions.
func runEpisode(environment *env.Environment, policy *rand.Rand) (int, *env.Timestep, error) {
	if _, err := environment.Reset(); err != nil {
		return 0, nil, err
	}

	steps := 0
	for {
		action := engine.Action(policy.Intn(int(engine.ActionRight) + 1))
		ts, err := environment.Step(action)
		if err != nil {
			return steps, nil, err
		}
		steps++
		if ts.Step == env.Last {
			return steps, ts, nil
		}
	}
}
