package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var profiler interface{ Stop() }

	rootCmd := &cobra.Command{
		Use:   "structsim",
		Short: "Monte Carlo simulations of structured agent architectures",
		Long: `structsim compares three agent architectures on synthetic decision tasks:

  S1  no division: judgment and execution coupled
  S2  weak division: delayed execution, weak structure
  V7  full structure: state, structure, execute

Each experiment samples independent trials from a seeded PRNG, aggregates
mean, standard deviation, catastrophic rate and effective performance, and
writes a JSON result document under the results directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("cpuprofile")
			if dir != "" {
				profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if profiler != nil {
				profiler.Stop()
				profiler = nil
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ~/.structsim/config.yaml)")
	rootCmd.PersistentFlags().String("results-dir", "", "Directory for result documents (overrides config)")
	rootCmd.PersistentFlags().Int64("seed", 0, "PRNG seed (overrides config; 0 draws a fresh seed)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "Write a CPU profile to this directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPerformanceCmd(),
		newStressCmd(),
		newStateSpaceCmd(),
		newJudgmentCmd(),
		newAllCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}
