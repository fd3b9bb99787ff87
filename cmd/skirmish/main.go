// Package main provides the skirmish command: a headless host for the
// action-combat core that runs encounters against the wall clock or as fast
// as possible.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skirmish",
	Short: "Run action-RPG combat encounters headlessly",
	Long: `skirmish loads combat content (clips, abilities, enemy templates, AI
profiles, Lua preconditions) and runs an encounter on a fixed-step
simulation clock.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML configuration file (defaults plus SKIRMISH_ environment when empty)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
