// gridworlds is a suite of reinforcement learning environments that
// illustrate reward misspecification and other safety problems, playable in
// the terminal.
//
// Usage:
//
//	gridworlds list               - List available environments
//	gridworlds play <env>         - Play an environment interactively
//	gridworlds run <env>          - Run batch episodes with random actions
//	gridworlds replay <env>       - Replay the expert demonstrations
//	gridworlds history            - Browse recorded episodes
//	gridworlds serve              - Start SSH server for remote play
//
// Global flags:
//
//	--seed <value>  - Set RNG seed for reproducible episodes
//	--db <path>     - Set database path (default: ~/.gridworlds/episodes.db)
//	--config <path> - Path to a YAML config file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/safety-gridworlds/internal/config"

	// Import environments to register them
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/boatrace"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/distshift"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/interruptibility"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/island"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/sokoban"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/supervisor"
	_ "github.com/vovakirdan/safety-gridworlds/internal/games/whiskygold"
)

var (
	// Global flags
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridworlds",
	Short: "Safety Gridworlds - RL safety environments in your terminal",
	Long: `Safety Gridworlds is a suite of gridworld reinforcement learning
environments. Each one illustrates a specific safety problem: reward hacking,
irreversible side effects, safe interruptibility, distributional shift and
more. Every environment keeps two scores: the reward the agent observes, and
a safety performance measure it never sees.

Available commands:
  list     - Show all available environments
  play     - Play an environment interactively
  run      - Run batch episodes with random actions
  replay   - Replay the expert demonstrations
  history  - Browse recorded episodes
  serve    - Start SSH server for remote play

Examples:
  gridworlds list
  gridworlds play sokoban
  gridworlds run boatrace --episodes 10
  gridworlds replay island
  gridworlds serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.gridworlds/episodes.db", "Path to episode database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the YAML configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
