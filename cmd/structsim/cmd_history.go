package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/store"
	"github.com/spf13/cobra"
)

// openHistory opens the configured history database for reading.
func openHistory(cmd *cobra.Command) (*store.History, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if !settings.History.Enabled {
		return nil, errors.New("run history is disabled (history.enabled: false)")
	}
	return store.Open(settings.HistoryPath())
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded experiment runs",
		Long: `List experiment runs recorded in the history database, newest first.

Examples:
  structsim history                          # Last 20 runs
  structsim history --experiment stress      # Only stress runs
  structsim history --limit 0                # Every run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			experiment, _ := cmd.Flags().GetString("experiment")
			limit, _ := cmd.Flags().GetInt("limit")

			if experiment != "" && !constants.Experiment(experiment).Valid() {
				return fmt.Errorf("invalid experiment: %s (valid: performance, stress, statespace, judgment)", experiment)
			}

			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.ListRuns(cmd.Context(), experiment, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-8s  %-11s  %6s  %7s  %-6s  %8s  %s\n", "ID", "EXPERIMENT", "SEED", "SAMPLES", "PASSED", "DURATION", "STARTED")
			for _, r := range runs {
				fmt.Fprintf(out, "%-8s  %-11s  %6d  %7s  %-6s  %8s  %s\n",
					shortID(r.ID), r.Experiment, r.Seed, humanize.Comma(int64(r.Samples)),
					passedLabel(r.Passed), r.Duration.Round(time.Millisecond), humanize.Time(r.StartedAt))
			}
			fmt.Fprintf(out, "\n%d run(s)\n", len(runs))
			return nil
		},
	}

	cmd.Flags().String("experiment", "", "Filter by experiment (performance, stress, statespace, judgment)")
	cmd.Flags().Int("limit", 20, "Maximum runs to list (0 for all)")

	cmd.AddCommand(
		newHistoryExportCmd(),
		newHistoryImportCmd(),
	)

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run with its summaries and hypotheses",
		Long: `Show one recorded run. The id may be any unique prefix, as printed by
'structsim history'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			run, err := h.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(run)
			}

			fmt.Fprintf(out, "Run:        %s\n", run.ID)
			fmt.Fprintf(out, "Experiment: %s\n", run.Experiment)
			fmt.Fprintf(out, "Seed:       %d\n", run.Seed)
			fmt.Fprintf(out, "Samples:    %s\n", humanize.Comma(int64(run.Samples)))
			fmt.Fprintf(out, "Started:    %s (%s)\n", run.StartedAt.Local().Format(time.RFC3339), humanize.Time(run.StartedAt))
			fmt.Fprintf(out, "Duration:   %s\n", run.Duration)
			fmt.Fprintf(out, "Passed:     %s\n", passedLabel(run.Passed))
			if run.ResultPath != "" {
				fmt.Fprintf(out, "Result:     %s\n", run.ResultPath)
			}

			if len(run.Summaries) > 0 {
				fmt.Fprintf(out, "\n%-20s %7s %8s %8s %8s %8s %10s\n", "Label", "N", "Mean", "Std", "Min", "Cat%", "Effective")
				for _, s := range run.Summaries {
					fmt.Fprintf(out, "%-20s %7d %8.2f %8.2f %8.2f %7.1f%% %10.2f\n",
						s.Label, s.N, s.Mean, s.Std, s.Min, s.CatastrophicRate, s.EffectivePerformance)
				}
			}

			if len(run.Hypotheses) > 0 {
				fmt.Fprintln(out)
				for _, hyp := range run.Hypotheses {
					fmt.Fprintf(out, "  %-16s %-4s %s\n", hyp.ID, passFail(hyp.Result), hyp.Description)
				}
			}
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func passedLabel(p *bool) string {
	switch {
	case p == nil:
		return "-"
	case *p:
		return "yes"
	default:
		return "no"
	}
}
