package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/pathutil"
	"github.com/nvandessel/structsim/internal/performance"
	"github.com/nvandessel/structsim/internal/report"
	"github.com/spf13/cobra"
)

func newPerformanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Compare S1, S2 and V7 outcome distributions",
		Long: `Sample independent trials for each architecture and compare mean,
standard deviation, catastrophic rate and effective performance.

Writes results/performance_comparison.json with every outcome, the
summary metrics and histogram/CDF series per system.

Examples:
  structsim performance                    # 3000 trials per system, seed 42
  structsim performance --samples 10000    # more trials
  structsim performance --arrow            # also export every trial as Arrow IPC`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if n, _ := cmd.Flags().GetInt("samples"); n != 0 {
				env.settings.Performance.Samples = n
			}
			if arrow, _ := cmd.Flags().GetBool("arrow"); arrow {
				env.settings.Performance.ArrowExport = true
			}
			if err := env.settings.Validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out, err := runPerformance(ctx, env)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.emit(out)
			}
			return nil
		},
	}

	cmd.Flags().Int("samples", 0, "Trials per architecture (default from config)")
	cmd.Flags().Bool("arrow", false, "Also write every trial as an Arrow IPC file")

	return cmd
}

// performanceOutput is the JSON summary of a performance run.
type performanceOutput struct {
	Samples    int               `json:"n_samples"`
	Seed       int64             `json:"seed"`
	Summaries  []metrics.Summary `json:"summaries"`
	Best       string            `json:"best"`
	ResultPath string            `json:"result_path"`
	ArrowPath  string            `json:"arrow_path,omitempty"`
	RunID      string            `json:"run_id,omitempty"`
}

func runPerformance(ctx context.Context, env *runEnv) (*performanceOutput, error) {
	start := time.Now()
	cfg := env.settings.ForPerformance()
	if env.trials != nil {
		cfg.Observer = func(arch models.Architecture, i int, tr models.Trial) {
			env.trials.Trial(constants.ExperimentPerformance.String(), arch.String(), i, tr.Catastrophic, tr)
		}
	}

	env.logger.Info("running performance comparison", "samples", cfg.Samples, "seed", cfg.Seed)
	res, err := performance.Run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("performance comparison failed: %w", err)
	}

	if !env.jsonOut {
		env.printer.Performance(res)
	}

	out := &performanceOutput{
		Samples:   res.Samples,
		Seed:      res.Seed,
		Summaries: res.Summaries(),
	}
	if best, ok := metrics.Best(out.Summaries); ok {
		out.Best = best.Label
	}

	out.ResultPath, err = env.write(constants.PerformanceResultFile, report.NewPerformanceDocument(res))
	if err != nil {
		return nil, err
	}

	if env.settings.Performance.ArrowExport {
		out.ArrowPath, err = pathutil.Within(env.settings.ResultsDir, constants.PerformanceArrowFile)
		if err != nil {
			return nil, err
		}
		size, err := report.WriteTrialsArrow(out.ArrowPath, res)
		if err != nil {
			return nil, fmt.Errorf("arrow export failed: %w", err)
		}
		if !env.jsonOut {
			env.printer.Written(out.ArrowPath, size)
		}
	}

	out.RunID = env.record(ctx, report.PerformanceRun(res), out.ResultPath, start)
	env.recorded(out.RunID)
	return out, nil
}
