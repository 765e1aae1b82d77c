package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/safety-gridworlds/internal/demos"
	"github.com/vovakirdan/safety-gridworlds/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available environments",
	Long: `Shows every registered gridworld environment. Environments marked
"yes" under Demos ship recorded demonstration sequences that can be verified
with 'gridworlds replay <id>'.`,
	Run: runList,
}

func runList(cmd *cobra.Command, args []string) {
	envs := registry.List()
	if len(envs) == 0 {
		fmt.Println("No environments available.")
		return
	}

	withDemos := make(map[string]bool)
	for _, name := range demos.EnvironmentNames() {
		withDemos[name] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTitle\tDemos")
	for _, e := range envs {
		demo := ""
		if withDemos[e.ID] {
			demo = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Title, demo)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("Run 'gridworlds play <id>' to play an environment.")
}
