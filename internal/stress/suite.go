package stress

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/simulation"
)

// Condition is one named row of the suite.
type Condition struct {
	Key         string                `json:"key"`
	Title       string                `json:"title"`
	Twist       Twist                 `json:"twist"`
	Systems     []models.Architecture `json:"systems"`
	Comparative bool                  `json:"comparative"`
}

// Conditions returns the baseline and the five twists. Twist 3 erodes the
// structure and only applies to V7; it is excluded from the comparative
// verdict.
func Conditions() []Condition {
	all := models.Architectures

	inflation := Baseline()
	inflation.CatPenalty = -50

	injection := Baseline()
	injection.FreedomBoost = 0.3

	erosion := Baseline()
	erosion.StructureErosion = 0.3

	spike := Baseline()
	spike.ExecSpike = 2.0

	noise := Baseline()
	noise.ObsNoise = 1.5

	return []Condition{
		{Key: "baseline", Title: "Normal Conditions", Twist: Baseline(), Systems: all, Comparative: true},
		{Key: "twist1", Title: "Cost Inflation: penalty -10 -> -50", Twist: inflation, Systems: all, Comparative: true},
		{Key: "twist2", Title: "Freedom Injection: +0.3 boost", Twist: injection, Systems: all, Comparative: true},
		{Key: "twist3", Title: "Structure Erosion (V7 only): 30% constraint failure", Twist: erosion, Systems: []models.Architecture{models.ArchV7}},
		{Key: "twist4", Title: "Execution Spike: 2x execution rate", Twist: spike, Systems: all, Comparative: true},
		{Key: "twist5", Title: "Observation Noise: info degradation", Twist: noise, Systems: all, Comparative: true},
	}
}

// Label is the result key of arch under a condition, e.g. "twist2_S1".
// The eroded V7 row keeps its historical key "twist3_V7_eroded".
func Label(conditionKey string, arch models.Architecture) string {
	if conditionKey == "twist3" && arch == models.ArchV7 {
		return "twist3_V7_eroded"
	}
	return conditionKey + "_" + arch.String()
}

// Config controls a suite run.
type Config struct {
	Samples       int
	Seed          int64
	Weights       metrics.Weights
	ErosionLevels []float64

	// Drift, when set, adds a drifting-erosion row for V7.
	Drift *DriftSchedule

	Observer func(label string, i int, tr models.Trial)
}

// DefaultConfig returns N=2000, seed 42, the default erosion sweep and no drift.
func DefaultConfig() Config {
	return Config{
		Samples:       constants.DefaultStressSamples,
		Seed:          constants.DefaultSeed,
		Weights:       metrics.DefaultWeights(),
		ErosionLevels: append([]float64(nil), constants.DefaultErosionLevels...),
	}
}

// ConditionResult holds the summaries of one condition.
type ConditionResult struct {
	Condition Condition                               `json:"condition"`
	Summaries map[models.Architecture]metrics.Summary `json:"summaries"`
	Deltas    map[models.Architecture]float64         `json:"effective_delta,omitempty"`
}

// ErosionPoint is one step of the erosion sweep.
type ErosionPoint struct {
	Erosion float64         `json:"erosion"`
	Summary metrics.Summary `json:"summary"`
}

// Verdict checks the suite's claims.
type Verdict struct {
	// StructuredCatastropheFree: V7 has zero catastrophes in every
	// comparative condition.
	StructuredCatastropheFree bool `json:"structured_catastrophe_free"`

	// StructuredBestEverywhere: V7 has the highest effective performance in
	// every comparative condition.
	StructuredBestEverywhere bool `json:"structured_best_everywhere"`

	// ErosionCausesCatastrophe: catastrophes appear in V7 only once the
	// structure erodes.
	ErosionCausesCatastrophe bool `json:"erosion_causes_catastrophe"`
}

// Passed reports whether every claim holds.
func (v Verdict) Passed() bool {
	return v.StructuredCatastropheFree && v.StructuredBestEverywhere && v.ErosionCausesCatastrophe
}

// SuiteResult is a full stress suite.
type SuiteResult struct {
	Samples    int               `json:"n_samples"`
	Seed       int64             `json:"seed"`
	Conditions []ConditionResult `json:"conditions"`
	Erosion    []ErosionPoint    `json:"erosion_sweep"`
	Drift      *metrics.Summary  `json:"drift,omitempty"`
	Verdict    Verdict           `json:"verdict"`
}

// Flat returns every summary keyed by its label, e.g. "twist4_S2".
func (r *SuiteResult) Flat() map[string]metrics.Summary {
	out := make(map[string]metrics.Summary)
	for _, cr := range r.Conditions {
		for arch, s := range cr.Summaries {
			out[Label(cr.Condition.Key, arch)] = s
		}
	}
	return out
}

// Simulate runs one architecture under one twist.
func Simulate(ctx context.Context, sys System, n int, rng *rand.Rand, w metrics.Weights, label string, observer func(string, int, models.Trial)) (metrics.Summary, error) {
	if err := sys.Twist.Validate(); err != nil {
		return metrics.Summary{}, fmt.Errorf("%s: %w", label, err)
	}
	trials, err := simulation.Run[models.Trial](ctx, sys, n, rng, observe(label, observer)...)
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("%s: %w", label, err)
	}
	return metrics.SummarizeTrials(label, trials, w)
}

// RunSuite runs every condition, the erosion sweep and the optional drift
// row from one PRNG seeded once.
func RunSuite(ctx context.Context, cfg Config) (*SuiteResult, error) {
	rng := entropy.New(cfg.Seed)
	res := &SuiteResult{Samples: cfg.Samples, Seed: cfg.Seed}

	var baseline map[models.Architecture]metrics.Summary
	for _, cond := range Conditions() {
		cr := ConditionResult{
			Condition: cond,
			Summaries: make(map[models.Architecture]metrics.Summary, len(cond.Systems)),
		}
		for _, arch := range cond.Systems {
			label := Label(cond.Key, arch)
			s, err := Simulate(ctx, System{Arch: arch, Twist: cond.Twist}, cfg.Samples, rng, cfg.Weights, label, cfg.Observer)
			if err != nil {
				return nil, err
			}
			cr.Summaries[arch] = s
		}

		if cond.Key == "baseline" {
			baseline = cr.Summaries
		} else if baseline != nil {
			cr.Deltas = make(map[models.Architecture]float64, len(cr.Summaries))
			for arch, s := range cr.Summaries {
				if b, ok := baseline[arch]; ok {
					cr.Deltas[arch] = s.EffectivePerformance - b.EffectivePerformance
				}
			}
		}
		res.Conditions = append(res.Conditions, cr)
	}

	for _, e := range cfg.ErosionLevels {
		tw := Baseline()
		tw.StructureErosion = e
		label := fmt.Sprintf("erosion_%.2f_V7", e)
		s, err := Simulate(ctx, System{Arch: models.ArchV7, Twist: tw}, cfg.Samples, rng, cfg.Weights, label, cfg.Observer)
		if err != nil {
			return nil, err
		}
		res.Erosion = append(res.Erosion, ErosionPoint{Erosion: e, Summary: s})
	}

	if cfg.Drift != nil {
		gen := DriftingSystem{Arch: models.ArchV7, Twist: Baseline(), Schedule: cfg.Drift}
		trials, err := simulation.RunIndexed[models.Trial](ctx, gen, cfg.Samples, rng, observe("drift_V7", cfg.Observer)...)
		if err != nil {
			return nil, fmt.Errorf("drift_V7: %w", err)
		}
		s, err := metrics.SummarizeTrials("drift_V7", trials, cfg.Weights)
		if err != nil {
			return nil, err
		}
		res.Drift = &s
	}

	res.Verdict = judge(res)
	return res, nil
}

func judge(res *SuiteResult) Verdict {
	v := Verdict{StructuredCatastropheFree: true, StructuredBestEverywhere: true}

	for _, cr := range res.Conditions {
		v7, ok := cr.Summaries[models.ArchV7]
		if !ok {
			continue
		}
		if !cr.Condition.Comparative {
			if v7.Catastrophic > 0 {
				v.ErosionCausesCatastrophe = true
			}
			continue
		}
		if v7.Catastrophic > 0 {
			v.StructuredCatastropheFree = false
		}
		for arch, s := range cr.Summaries {
			if arch != models.ArchV7 && s.EffectivePerformance >= v7.EffectivePerformance {
				v.StructuredBestEverywhere = false
			}
		}
	}

	for _, p := range res.Erosion {
		if p.Erosion == 0 && p.Summary.Catastrophic > 0 {
			v.ErosionCausesCatastrophe = false
			break
		}
	}
	return v
}

func observe(label string, fn func(string, int, models.Trial)) []simulation.Option[models.Trial] {
	if fn == nil {
		return nil
	}
	return []simulation.Option[models.Trial]{
		simulation.WithObserver(func(i int, tr models.Trial) { fn(label, i, tr) }),
	}
}
