package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/safety-gridworlds/internal/platform/tui"
	"github.com/vovakirdan/safety-gridworlds/internal/registry"
	"github.com/vovakirdan/safety-gridworlds/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play <env>",
	Short: "Play an environment",
	Long: `Start playing the specified environment. The simulation is
turn-based: each key press advances exactly one step.

Controls:
  Arrows/WASD - Move
  N/Space     - Wait (if the environment allows it)
  R           - Start a new episode
  Q/Ctrl+C    - Quit (ends and records the current episode)

Examples:
  gridworlds play sokoban
  gridworlds play interruptibility --seed 17
  gridworlds play distshift --config ./my-config.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) {
	envID := args[0]

	if !registry.Exists(envID) {
		fmt.Fprintf(os.Stderr, "Error: unknown environment %q\n", envID)
		fmt.Fprintln(os.Stderr, "Run 'gridworlds list' to see available environments.")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Use time-based seed if not specified
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	environment, err := registry.Create(envID, registry.Options{Seed: seed, Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating environment: %v\n", err)
		os.Exit(1)
	}

	// Open episode storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open episode database: %v\n", err)
		// Continue without storage - play still works
		store = nil
	}

	runErr := tui.Run(envID, environment, store, seed)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running environment: %v\n", runErr)
		os.Exit(1)
	}
}
