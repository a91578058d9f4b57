package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/stats"
)

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	if w.VarianceWeight != 0.5 {
		t.Errorf("VarianceWeight = %v, want 0.5", w.VarianceWeight)
	}
	if w.CatastropheWeight != 2.0 {
		t.Errorf("CatastropheWeight = %v, want 2.0", w.CatastropheWeight)
	}
	if w.CatastropheScale != 10 {
		t.Errorf("CatastropheScale = %v, want 10", w.CatastropheScale)
	}
}

func TestSummarize(t *testing.T) {
	// mean = (-10 + 6 + 8 + 6) / 4 = 2.5
	// pop std = sqrt((156.25 + 12.25 + 30.25 + 12.25) / 4) = sqrt(52.75)
	outcomes := []float64{-10, 6, 8, 6}

	s, err := Summarize("S1", outcomes, DefaultWeights())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	std := math.Sqrt(52.75)
	wantEffective := stats.Round(2.5-0.5*std-2.0*0.25*10, 2)

	if s.Label != "S1" {
		t.Errorf("Label = %q, want S1", s.Label)
	}
	if s.N != 4 {
		t.Errorf("N = %d, want 4", s.N)
	}
	if s.Mean != 2.5 {
		t.Errorf("Mean = %v, want 2.5", s.Mean)
	}
	if s.Std != stats.Round(std, 2) {
		t.Errorf("Std = %v, want %v", s.Std, stats.Round(std, 2))
	}
	if s.Min != -10 {
		t.Errorf("Min = %v, want -10", s.Min)
	}
	if s.Catastrophic != 1 {
		t.Errorf("Catastrophic = %d, want 1", s.Catastrophic)
	}
	if s.CatastrophicRate != 25 {
		t.Errorf("CatastrophicRate = %v, want 25", s.CatastrophicRate)
	}
	if s.EffectivePerformance != wantEffective {
		t.Errorf("EffectivePerformance = %v, want %v", s.EffectivePerformance, wantEffective)
	}
}

func TestSummarize_NoCatastrophe(t *testing.T) {
	s, err := Summarize("V7", []float64{5, 5, 5}, DefaultWeights())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Std != 0 || s.Catastrophic != 0 || s.CatastrophicRate != 0 {
		t.Errorf("unexpected spread or catastrophes: %+v", s)
	}
	if s.EffectivePerformance != 5 {
		t.Errorf("EffectivePerformance = %v, want 5", s.EffectivePerformance)
	}
}

func TestSummarize_ZeroIsNotCatastrophic(t *testing.T) {
	s, err := Summarize("S1", []float64{0, 0, 1}, DefaultWeights())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Catastrophic != 0 {
		t.Errorf("Catastrophic = %d, want 0 (zero is a floor, not a failure)", s.Catastrophic)
	}
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize("S1", nil, DefaultWeights())
	if !errors.Is(err, stats.ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestSummarize_CustomWeights(t *testing.T) {
	w := Weights{VarianceWeight: 0, CatastropheWeight: 1, CatastropheScale: 1}
	s, err := Summarize("x", []float64{-1, 3}, w)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	// mean 1, one catastrophe out of two
	if s.EffectivePerformance != 0.5 {
		t.Errorf("EffectivePerformance = %v, want 0.5", s.EffectivePerformance)
	}
}

func TestSummarizeTrials(t *testing.T) {
	trials := []models.Trial{{Outcome: 4}, {Outcome: 6}}
	s, err := SummarizeTrials("S2", trials, DefaultWeights())
	if err != nil {
		t.Fatalf("SummarizeTrials: %v", err)
	}
	if s.Mean != 5 {
		t.Errorf("Mean = %v, want 5", s.Mean)
	}
}

func TestBest(t *testing.T) {
	if _, ok := Best(nil); ok {
		t.Error("Best(nil) should report false")
	}
	got, ok := Best([]Summary{
		{Label: "S1", EffectivePerformance: 1.2},
		{Label: "V7", EffectivePerformance: 5.1},
		{Label: "S2", EffectivePerformance: 5.1},
	})
	if !ok || got.Label != "V7" {
		t.Errorf("Best = %q, want V7", got.Label)
	}
}
