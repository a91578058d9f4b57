package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/report"
	"github.com/nvandessel/structsim/internal/stress"
	"github.com/spf13/cobra"
)

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run the adversarial stress suite",
		Long: `Re-run the architectures under five adversarial twists:

  twist1  cost inflation: catastrophic penalty -10 -> -50
  twist2  freedom injection: +0.3 freedom
  twist3  structure erosion: 30% of V7 constraints fail (V7 only)
  twist4  execution spike: 2x catastrophe probability and shock
  twist5  observation noise: degraded latent quality

followed by a V7 structure erosion sweep and, with --drift, a V7 row whose
erosion drifts across the run along OpenSimplex noise.

Writes results/adversarial_stress_results.json.

Examples:
  structsim stress
  structsim stress --erosion 0,0.25,0.5
  structsim stress --drift --drift-amplitude 0.4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s := &env.settings.Stress
			if n, _ := cmd.Flags().GetInt("samples"); n != 0 {
				s.Samples = n
			}
			if cmd.Flags().Changed("erosion") {
				s.ErosionLevels, _ = cmd.Flags().GetFloat64Slice("erosion")
			}
			if drift, _ := cmd.Flags().GetBool("drift"); drift {
				s.Drift.Enabled = true
			}
			if cmd.Flags().Changed("drift-amplitude") {
				s.Drift.Amplitude, _ = cmd.Flags().GetFloat64("drift-amplitude")
			}
			if cmd.Flags().Changed("drift-frequency") {
				s.Drift.Frequency, _ = cmd.Flags().GetFloat64("drift-frequency")
			}
			if err := env.settings.Validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out, err := runStress(ctx, env)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.emit(out)
			}
			return nil
		},
	}

	cmd.Flags().Int("samples", 0, "Trials per condition (default from config)")
	cmd.Flags().Float64Slice("erosion", nil, "Erosion sweep levels in [0, 1] (default 0,0.1,...,0.5)")
	cmd.Flags().Bool("drift", false, "Add a V7 row with drifting structure erosion")
	cmd.Flags().Float64("drift-amplitude", 0, "Peak erosion of the drift row (default from config)")
	cmd.Flags().Float64("drift-frequency", 0, "Noise cycles across the drift row (default from config)")

	return cmd
}

// stressOutput is the JSON summary of a stress run.
type stressOutput struct {
	report.StressDocument
	ResultPath string `json:"result_path"`
	RunID      string `json:"run_id,omitempty"`
}

func runStress(ctx context.Context, env *runEnv) (*stressOutput, error) {
	start := time.Now()
	cfg := env.settings.ForStress()
	if env.trials != nil {
		cfg.Observer = func(label string, i int, tr models.Trial) {
			env.trials.Trial(constants.ExperimentStress.String(), label, i, tr.Catastrophic, tr)
		}
	}

	env.logger.Info("running stress suite", "samples", cfg.Samples, "seed", cfg.Seed,
		"erosion_levels", len(cfg.ErosionLevels), "drift", cfg.Drift != nil)
	res, err := stress.RunSuite(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("stress suite failed: %w", err)
	}

	if !env.jsonOut {
		env.printer.Stress(res)
	}

	doc := report.NewStressDocument(res)
	out := &stressOutput{StressDocument: doc}
	out.ResultPath, err = env.write(constants.StressResultFile, doc)
	if err != nil {
		return nil, err
	}

	out.RunID = env.record(ctx, report.StressRun(res), out.ResultPath, start)
	env.recorded(out.RunID)
	return out, nil
}
