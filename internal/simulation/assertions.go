package simulation

import (
	"testing"

	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/models"
)

// AssertNoCatastrophe asserts that no trial in the summary was catastrophic.
func AssertNoCatastrophe(t *testing.T, s metrics.Summary) {
	t.Helper()
	if s.Catastrophic != 0 {
		t.Errorf("AssertNoCatastrophe: %s: %d catastrophic trials (%.1f%%)", s.Label, s.Catastrophic, s.CatastrophicRate)
	}
}

// AssertCatastrophicRateBetween asserts that the catastrophic percentage
// falls within [min, max].
func AssertCatastrophicRateBetween(t *testing.T, s metrics.Summary, min, max float64) {
	t.Helper()
	if s.CatastrophicRate < min || s.CatastrophicRate > max {
		t.Errorf("AssertCatastrophicRateBetween: %s: rate %.1f%% not in [%.1f, %.1f]", s.Label, s.CatastrophicRate, min, max)
	}
}

// AssertStdBelow asserts that the summary's standard deviation is below max.
func AssertStdBelow(t *testing.T, s metrics.Summary, max float64) {
	t.Helper()
	if s.Std >= max {
		t.Errorf("AssertStdBelow: %s: std %.2f >= %.2f", s.Label, s.Std, max)
	}
}

// AssertMeanBetween asserts that the summary's mean falls within [min, max].
func AssertMeanBetween(t *testing.T, s metrics.Summary, min, max float64) {
	t.Helper()
	if s.Mean < min || s.Mean > max {
		t.Errorf("AssertMeanBetween: %s: mean %.2f not in [%.2f, %.2f]", s.Label, s.Mean, min, max)
	}
}

// AssertOutranks asserts that a has strictly higher effective performance than b.
func AssertOutranks(t *testing.T, a, b metrics.Summary) {
	t.Helper()
	if a.EffectivePerformance <= b.EffectivePerformance {
		t.Errorf("AssertOutranks: %s effective %.2f <= %s effective %.2f", a.Label, a.EffectivePerformance, b.Label, b.EffectivePerformance)
	}
}

// AssertBounded asserts that every non-catastrophic outcome lies in [lo, hi]
// and every catastrophic outcome equals penalty.
func AssertBounded(t *testing.T, trials []models.Trial, lo, hi, penalty float64) {
	t.Helper()
	for i, tr := range trials {
		if tr.Catastrophic {
			if tr.Outcome != penalty {
				t.Errorf("AssertBounded: trial %d: catastrophic outcome %.4f != penalty %.4f", i, tr.Outcome, penalty)
			}
			continue
		}
		if tr.Outcome < lo || tr.Outcome > hi {
			t.Errorf("AssertBounded: trial %d: outcome %.4f not in [%.2f, %.2f]", i, tr.Outcome, lo, hi)
		}
	}
}
