// Package metrics aggregates trial outcomes into the summary reported for
// each architecture: central tendency, spread, worst case, catastrophic
// frequency and the derived effective performance score.
package metrics

import (
	"fmt"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/stats"
)

// Weights parameterize the effective performance score.
type Weights struct {
	// VarianceWeight (lambda) is subtracted per unit of standard deviation.
	VarianceWeight float64 `json:"variance_weight" yaml:"variance_weight"`

	// CatastropheWeight (mu) is subtracted per unit of scaled catastrophic fraction.
	CatastropheWeight float64 `json:"catastrophe_weight" yaml:"catastrophe_weight"`

	// CatastropheScale maps the catastrophic fraction onto the outcome scale.
	CatastropheScale float64 `json:"catastrophe_scale" yaml:"catastrophe_scale"`
}

// DefaultWeights returns lambda=0.5, mu=2.0, scale=10.
func DefaultWeights() Weights {
	return Weights{
		VarianceWeight:    constants.DefaultVarianceWeight,
		CatastropheWeight: constants.DefaultCatastropheWeight,
		CatastropheScale:  constants.DefaultCatastropheScale,
	}
}

// Summary is the aggregate of one outcome list. Floats are rounded to two
// decimals and the catastrophic rate is a percentage with one decimal.
type Summary struct {
	Label                string  `json:"system"`
	N                    int     `json:"n"`
	Mean                 float64 `json:"mean"`
	Std                  float64 `json:"std"`
	Min                  float64 `json:"min"`
	Catastrophic         int     `json:"catastrophic"`
	CatastrophicRate     float64 `json:"catastrophic_rate"`
	EffectivePerformance float64 `json:"effective_performance"`
}

// Effective computes mean - lambda*std - mu*fraction*scale on unrounded inputs.
func (w Weights) Effective(mean, std, catastrophicFraction float64) float64 {
	return mean - w.VarianceWeight*std - w.CatastropheWeight*catastrophicFraction*w.CatastropheScale
}

// Summarize aggregates outcomes. Any outcome below zero counts as catastrophic.
func Summarize(label string, outcomes []float64, w Weights) (Summary, error) {
	if len(outcomes) == 0 {
		return Summary{}, fmt.Errorf("summarize %s: %w", label, stats.ErrEmpty)
	}

	mean, err := stats.Mean(outcomes)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: %w", label, err)
	}
	std, err := stats.PopStd(outcomes)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: %w", label, err)
	}
	minVal, err := stats.Min(outcomes)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: %w", label, err)
	}

	catastrophic := stats.CountBelow(outcomes, 0)
	fraction := float64(catastrophic) / float64(len(outcomes))

	return Summary{
		Label:                label,
		N:                    len(outcomes),
		Mean:                 stats.Round(mean, 2),
		Std:                  stats.Round(std, 2),
		Min:                  stats.Round(minVal, 2),
		Catastrophic:         catastrophic,
		CatastrophicRate:     stats.Round(fraction*100, 1),
		EffectivePerformance: stats.Round(w.Effective(mean, std, fraction), 2),
	}, nil
}

// SummarizeTrials is Summarize over the outcomes of trials.
func SummarizeTrials(label string, trials []models.Trial, w Weights) (Summary, error) {
	return Summarize(label, models.Outcomes(trials), w)
}

// Best returns the summary with the highest effective performance.
// Ties keep the earliest entry.
func Best(summaries []Summary) (Summary, bool) {
	if len(summaries) == 0 {
		return Summary{}, false
	}
	best := summaries[0]
	for _, s := range summaries[1:] {
		if s.EffectivePerformance > best.EffectivePerformance {
			best = s
		}
	}
	return best, true
}
