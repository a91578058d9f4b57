package report

import (
	"encoding/json"
	"strings"

	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/performance"
	"github.com/nvandessel/structsim/internal/statespace"
	"github.com/nvandessel/structsim/internal/stats"
	"github.com/nvandessel/structsim/internal/stress"
)

// PerformanceSystem is one architecture in the performance document.
type PerformanceSystem struct {
	Outcomes  []float64       `json:"outcomes"`
	Metrics   metrics.Summary `json:"metrics"`
	Histogram []stats.Bin     `json:"histogram"`
	CDF       []stats.Point   `json:"cdf"`
}

// PerformanceDocument is results/performance_comparison.json. Systems are
// keyed "s1", "s2", "v7".
type PerformanceDocument struct {
	Samples int                          `json:"n_samples"`
	Seed    int64                        `json:"seed"`
	Systems map[string]PerformanceSystem `json:"-"`
}

// MarshalJSON flattens the systems next to n_samples.
func (d PerformanceDocument) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.Systems)+2)
	flat["n_samples"] = d.Samples
	flat["seed"] = d.Seed
	for k, v := range d.Systems {
		flat[k] = v
	}
	return json.Marshal(flat)
}

// NewPerformanceDocument builds the performance document.
func NewPerformanceDocument(res *performance.Result) PerformanceDocument {
	doc := PerformanceDocument{
		Samples: res.Samples,
		Seed:    res.Seed,
		Systems: make(map[string]PerformanceSystem, len(res.Systems)),
	}
	for _, s := range res.Systems {
		doc.Systems[strings.ToLower(s.Arch.String())] = PerformanceSystem{
			Outcomes:  s.Outcomes,
			Metrics:   s.Metrics,
			Histogram: s.Histogram,
			CDF:       s.CDF,
		}
	}
	return doc
}

// StressMetrics is the compact summary used by the stress document.
type StressMetrics struct {
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Min          float64 `json:"min"`
	Catastrophic int     `json:"catastrophic"`
	CatRate      float64 `json:"cat_rate"`
	Effective    float64 `json:"effective"`
}

func newStressMetrics(s metrics.Summary) StressMetrics {
	return StressMetrics{
		Mean:         s.Mean,
		Std:          s.Std,
		Min:          s.Min,
		Catastrophic: s.Catastrophic,
		CatRate:      s.CatastrophicRate,
		Effective:    s.EffectivePerformance,
	}
}

// ErosionRow is one step of the erosion sweep.
type ErosionRow struct {
	Erosion float64       `json:"erosion"`
	Metrics StressMetrics `json:"metrics"`
}

// StressDocument is results/adversarial_stress_results.json.
type StressDocument struct {
	Samples int                      `json:"n_samples"`
	Seed    int64                    `json:"seed"`
	Results map[string]StressMetrics `json:"results"`
	Deltas  map[string]float64       `json:"effective_delta"`
	Erosion []ErosionRow             `json:"erosion_sweep"`
	Drift   *StressMetrics           `json:"drift_V7,omitempty"`
	Verdict stress.Verdict           `json:"verdict"`
	Passed  bool                     `json:"all_passed"`
}

// NewStressDocument builds the stress document. Deltas are keyed like results.
func NewStressDocument(res *stress.SuiteResult) StressDocument {
	doc := StressDocument{
		Samples: res.Samples,
		Seed:    res.Seed,
		Results: make(map[string]StressMetrics),
		Deltas:  make(map[string]float64),
		Verdict: res.Verdict,
		Passed:  res.Verdict.Passed(),
	}
	for label, s := range res.Flat() {
		doc.Results[label] = newStressMetrics(s)
	}
	for _, cr := range res.Conditions {
		for arch, d := range cr.Deltas {
			doc.Deltas[stress.Label(cr.Condition.Key, arch)] = stats.Round(d, 2)
		}
	}
	for _, p := range res.Erosion {
		doc.Erosion = append(doc.Erosion, ErosionRow{Erosion: p.Erosion, Metrics: newStressMetrics(p.Summary)})
	}
	if res.Drift != nil {
		m := newStressMetrics(*res.Drift)
		doc.Drift = &m
	}
	return doc
}

// StateSpaceDocument is results/macro_micro_states.json: every sample, S1
// then S2 then S3_V7.
func StateSpaceDocument(res *statespace.Result) []models.StateSample {
	return res.All()
}

// JudgmentDocument is results/jve_results.json.
func JudgmentDocument(res *judgment.Result) *judgment.Result {
	return res
}
