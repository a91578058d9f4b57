package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every experiment with configured settings",
		Long: `Run performance, stress, statespace and judgment in order, writing
every result document and recording each run in the history.

Every experiment shares the seed; the judgment tasks keep their own
base seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			perf, err := runPerformance(ctx, env)
			if err != nil {
				return err
			}
			env.separator()

			st, err := runStress(ctx, env)
			if err != nil {
				return err
			}
			env.separator()

			ss, err := runStateSpace(ctx, env)
			if err != nil {
				return err
			}
			env.separator()

			jd, err := runJudgment(ctx, env)
			if err != nil {
				return err
			}

			if env.jsonOut {
				return env.emit(map[string]any{
					"performance": perf,
					"stress":      st,
					"statespace":  ss,
					"judgment":    jd,
				})
			}

			fmt.Fprintf(env.out, "\nAll experiments complete (seed %d). Stress verdict: %s, judgment hypotheses: %s\n",
				env.settings.Seed, passFail(st.Passed), passFail(jd.AllPassed))
			return nil
		},
	}
}

// separator prints a blank line between experiments in text mode.
func (e *runEnv) separator() {
	if !e.jsonOut {
		fmt.Fprintln(e.out)
	}
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
