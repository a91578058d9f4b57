package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/report"
	"github.com/nvandessel/structsim/internal/statespace"
	"github.com/spf13/cobra"
)

func newStateSpaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statespace",
		Short: "Sample the five-axis macro/micro state space",
		Long: `Sample freedom, failure cost, reversibility, time model and information
gain for S1, S2 and S3_V7, with a categorical outcome per sample
(success, fail or catastrophic).

Writes results/macro_micro_states.json as a flat list of samples.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if n, _ := cmd.Flags().GetInt("samples"); n != 0 {
				env.settings.StateSpace.Samples = n
			}
			if err := env.settings.Validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out, err := runStateSpace(ctx, env)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.emit(out)
			}
			return nil
		},
	}

	cmd.Flags().Int("samples", 0, "Samples per system (default from config)")

	return cmd
}

// stateSpaceOutput is the JSON summary of a state-space run.
type stateSpaceOutput struct {
	*statespace.Result
	ResultPath string `json:"result_path"`
	RunID      string `json:"run_id,omitempty"`
}

func runStateSpace(ctx context.Context, env *runEnv) (*stateSpaceOutput, error) {
	start := time.Now()
	cfg := env.settings.ForStateSpace()
	if env.trials != nil {
		cfg.Observer = func(s models.StateSample) {
			env.trials.Trial(constants.ExperimentStateSpace.String(), s.System, s.Iteration,
				s.Outcome == models.CategoryCatastrophic, s)
		}
	}

	env.logger.Info("sampling state space", "samples", cfg.Samples, "seed", cfg.Seed)
	res, err := statespace.Run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("state-space sampling failed: %w", err)
	}

	if !env.jsonOut {
		env.printer.StateSpace(res)
	}

	out := &stateSpaceOutput{Result: res}
	out.ResultPath, err = env.write(constants.StateSpaceResultFile, report.StateSpaceDocument(res))
	if err != nil {
		return nil, err
	}

	out.RunID = env.record(ctx, report.StateSpaceRun(res), out.ResultPath, start)
	env.recorded(out.RunID)
	return out, nil
}
