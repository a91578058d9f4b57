package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/report"
	"github.com/spf13/cobra"
)

func newJudgmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judgment",
		Short: "Run the judgment-versus-execution experiment",
		Long: `Play four agents against the same sequence of seeded tasks:

  A  judgment only: observes, never executes
  B  high execution: executes as soon as the signal looks good
  C  delayed execution: waits a fixed number of turns
  D  structured: executes after the condition change on a consistent signal

and test three hypotheses:

  H1  execution amplifies variance: std(B) > std(A) and std(B) > std(D)
  H2  judgment alone has no catastrophe: catastrophic rate of A < 5%
  H3  structure compresses variance: std(D) < 0.7 * std(B)

Task i is seeded with base-seed + i, independent of --seed.
Writes results/jve_results.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			j := &env.settings.Judgment
			if n, _ := cmd.Flags().GetInt("runs"); n != 0 {
				j.Runs = n
			}
			if n, _ := cmd.Flags().GetInt("max-turns"); n != 0 {
				j.MaxTurns = n
			}
			if cmd.Flags().Changed("base-seed") {
				j.BaseSeed, _ = cmd.Flags().GetInt64("base-seed")
			}
			if err := env.settings.Validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out, err := runJudgment(ctx, env)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.emit(out)
			}
			return nil
		},
	}

	cmd.Flags().Int("runs", 0, "Tasks per agent (default from config)")
	cmd.Flags().Int("max-turns", 0, "Turns per task (default from config)")
	cmd.Flags().Int64("base-seed", 0, "Seed of the first task (default from config)")

	return cmd
}

// judgmentOutput is the JSON summary of a judgment run.
type judgmentOutput struct {
	*judgment.Result
	ResultPath string `json:"result_path"`
	RunID      string `json:"run_id,omitempty"`
}

func runJudgment(ctx context.Context, env *runEnv) (*judgmentOutput, error) {
	start := time.Now()
	cfg := env.settings.ForJudgment()
	if env.trials != nil {
		cfg.Observer = func(r judgment.RunResult) {
			env.trials.Trial(constants.ExperimentJudgment.String(), string(r.Agent), int(r.RunID), r.IsCatastrophic, r)
		}
	}

	env.logger.Info("running judgment experiment", "runs", cfg.Runs, "max_turns", cfg.MaxTurns, "base_seed", cfg.BaseSeed)
	res, err := judgment.Run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("judgment experiment failed: %w", err)
	}

	if !env.jsonOut {
		env.printer.Judgment(res)
	}

	out := &judgmentOutput{Result: res}
	out.ResultPath, err = env.write(constants.JudgmentResultFile, report.JudgmentDocument(res))
	if err != nil {
		return nil, err
	}

	out.RunID = env.record(ctx, report.JudgmentRun(res), out.ResultPath, start)
	env.recorded(out.RunID)
	return out, nil
}
