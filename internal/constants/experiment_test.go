package constants

import "testing"

func TestExperimentValid(t *testing.T) {
	tests := []struct {
		exp  Experiment
		want bool
	}{
		{ExperimentPerformance, true},
		{ExperimentStress, true},
		{ExperimentStateSpace, true},
		{ExperimentJudgment, true},
		{Experiment(""), false},
		{Experiment("chat"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.exp), func(t *testing.T) {
			if got := tt.exp.Valid(); got != tt.want {
				t.Errorf("Experiment(%q).Valid() = %v, want %v", tt.exp, got, tt.want)
			}
		})
	}
}

func TestExperimentsAreValid(t *testing.T) {
	for _, e := range Experiments {
		if !e.Valid() {
			t.Errorf("Experiments contains invalid entry %q", e)
		}
	}
}
