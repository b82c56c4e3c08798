// novasim runs the deterministic drone simulation headless, records and
// replays its traces, and manages the trace archive.
//
// Usage:
//
//	novasim record --steps N --out FILE   - Record a run to a trace file
//	novasim replay --in FILE              - Play a trace back and check it
//	novasim verify --steps N              - Record and replay in memory, compare
//	novasim archive list                  - List archived traces
//
// Global flags:
//
//	--config <path>  - Config file (default: $NOVASIM_CONFIG or config/novasim.toml)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "novasim",
	Short: "Deterministic drone simulation with record and replay",
	Long: `novasim steps a seeded drone simulation. Runs with the same seed and
input produce identical state, so a recorded trace replays exactly.

Examples:
  novasim record --steps 600 --out run.replay
  novasim replay --in run.replay
  novasim verify --steps 1000 --seed 42
  novasim archive list`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(archiveCmd)
}
