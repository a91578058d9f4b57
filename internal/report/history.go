package report

import (
	"math"
	"sort"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/performance"
	"github.com/nvandessel/structsim/internal/statespace"
	"github.com/nvandessel/structsim/internal/stats"
	"github.com/nvandessel/structsim/internal/store"
	"github.com/nvandessel/structsim/internal/stress"
)

// The functions below turn experiment results into history records. Callers
// fill in Config, ResultPath, StartedAt and Duration.

// PerformanceRun records a comparison. It passes when V7 has the highest
// effective performance.
func PerformanceRun(res *performance.Result) *store.Run {
	sums := res.Summaries()
	top, ok := metrics.Best(sums)
	best := ok && top.Label == models.ArchV7.String()
	return &store.Run{
		Experiment: constants.ExperimentPerformance.String(),
		Seed:       res.Seed,
		Samples:    res.Samples,
		Passed:     &best,
		Summaries:  sums,
		Hypotheses: []store.Hypothesis{
			{ID: "best", Description: "V7 has the highest effective performance", Result: best},
		},
	}
}

// StressRun records a suite with one summary per label, in run order, and
// the verdict claims as hypotheses.
func StressRun(res *stress.SuiteResult) *store.Run {
	var sums []metrics.Summary
	for _, cr := range res.Conditions {
		for _, arch := range cr.Condition.Systems {
			if s, ok := cr.Summaries[arch]; ok {
				sums = append(sums, s)
			}
		}
	}
	for _, p := range res.Erosion {
		sums = append(sums, p.Summary)
	}
	if res.Drift != nil {
		sums = append(sums, *res.Drift)
	}

	passed := res.Verdict.Passed()
	return &store.Run{
		Experiment: constants.ExperimentStress.String(),
		Seed:       res.Seed,
		Samples:    res.Samples,
		Passed:     &passed,
		Summaries:  sums,
		Hypotheses: []store.Hypothesis{
			{ID: "catastrophe_free", Description: "V7 has no catastrophe in any comparative condition", Result: res.Verdict.StructuredCatastropheFree},
			{ID: "best_everywhere", Description: "V7 has the highest effective performance in every comparative condition", Result: res.Verdict.StructuredBestEverywhere},
			{ID: "erosion", Description: "V7 catastrophes appear only once structure erodes", Result: res.Verdict.ErosionCausesCatastrophe},
		},
	}
}

// StateSpaceRun records outcome tallies. Only N, Catastrophic and
// CatastrophicRate are meaningful in its summaries.
func StateSpaceRun(res *statespace.Result) *store.Run {
	sums := make([]metrics.Summary, 0, len(res.Systems))
	for _, s := range res.Systems {
		sums = append(sums, metrics.Summary{
			Label:            s.System,
			N:                s.Counts.Total(),
			Catastrophic:     s.Counts.Catastrophic,
			CatastrophicRate: s.CatastrophicRate,
		})
	}
	return &store.Run{
		Experiment: constants.ExperimentStateSpace.String(),
		Seed:       res.Seed,
		Samples:    res.Samples,
		Summaries:  sums,
	}
}

// JudgmentRun records the quality distribution of every agent and H1..H3.
// BaseSeed is stored as the seed.
func JudgmentRun(res *judgment.Result) *store.Run {
	sums := make([]metrics.Summary, 0, len(judgment.AgentTypes))
	for _, agent := range judgment.AgentTypes {
		d, ok := res.Metrics[agent]
		if !ok {
			continue
		}
		lowest, _ := stats.Min(res.Qualities[agent])
		sums = append(sums, metrics.Summary{
			Label:            string(agent),
			N:                d.NRuns,
			Mean:             stats.Round(d.Mean, 2),
			Std:              stats.Round(d.Std, 2),
			Min:              stats.Round(lowest, 2),
			Catastrophic:     int(math.Round(d.CatastrophicRate * float64(d.NRuns))),
			CatastrophicRate: stats.Round(d.CatastrophicRate*100, 1),
		})
	}

	ids := make([]string, 0, len(res.Hypotheses))
	for id := range res.Hypotheses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	hyps := make([]store.Hypothesis, 0, len(ids))
	for _, id := range ids {
		h := res.Hypotheses[id]
		hyps = append(hyps, store.Hypothesis{ID: id, Description: h.Description, Result: h.Result})
	}

	passed := res.AllPassed
	return &store.Run{
		Experiment: constants.ExperimentJudgment.String(),
		Seed:       res.BaseSeed,
		Samples:    res.NRuns,
		Passed:     &passed,
		Summaries:  sums,
		Hypotheses: hyps,
	}
}
