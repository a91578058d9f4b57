package judgment_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/stats"
)

func TestSimulate_JudgmentOnly(t *testing.T) {
	r := judgment.Simulate(judgment.JudgmentOnly, 4, 10)
	if math.Abs(r.OutcomeQuality-3) > 1e-9 {
		t.Errorf("quality = %v, want 3", r.OutcomeQuality)
	}
	if r.IsCatastrophic || r.ExecutionCount != 0 {
		t.Errorf("judgment-only run executed: %+v", r)
	}
	if r.TimeToAction != 10 {
		t.Errorf("time to action = %d, want max turns", r.TimeToAction)
	}
	if math.Abs(r.VarianceContribution-0.2) > 1e-9 {
		t.Errorf("variance contribution = %v, want 0.2", r.VarianceContribution)
	}
}

func TestSimulate_TurnZeroExecutionReportsMaxTurns(t *testing.T) {
	sawTurnZero := false
	for seed := int64(0); seed < 100; seed++ {
		r := judgment.Simulate(judgment.HighExecution, seed, 10)
		if r.TimeToAction == 0 {
			t.Errorf("seed %d: time to action 0, want max turns", seed)
		}
		// Turns run 0..9, so an executing run can only report 10 when it
		// first acted on turn 0.
		if r.ExecutionCount > 0 && r.TimeToAction == 10 {
			sawTurnZero = true
		}
		if r.ExecutionCount == 0 && r.TimeToAction != 10 {
			t.Errorf("seed %d: idle run reports time to action %d", seed, r.TimeToAction)
		}
	}
	if !sawTurnZero {
		t.Error("no high-execution run acted on turn 0")
	}
}

func TestSimulate_Bounds(t *testing.T) {
	for _, a := range judgment.AgentTypes {
		for seed := int64(0); seed < 100; seed++ {
			r := judgment.Simulate(a, seed, 10)
			if r.OutcomeQuality < 0 || r.OutcomeQuality > 10 {
				t.Fatalf("%s seed %d: quality %.3f", a, seed, r.OutcomeQuality)
			}
			if r.IsCatastrophic && r.ExecutionCount == 0 {
				t.Fatalf("%s seed %d: catastrophe without execution", a, seed)
			}
			if r.RunID != seed || r.Agent != a {
				t.Fatalf("%s seed %d: mislabelled %+v", a, seed, r)
			}
		}
	}
}

func TestAnalyze(t *testing.T) {
	results := []judgment.RunResult{
		{Agent: judgment.HighExecution, OutcomeQuality: 2, TimeToAction: 0, IsCatastrophic: true},
		{Agent: judgment.HighExecution, OutcomeQuality: 8, TimeToAction: 10},
		{Agent: judgment.HighExecution, OutcomeQuality: 4, TimeToAction: 2},
		{Agent: judgment.HighExecution, OutcomeQuality: 6, TimeToAction: 4},
	}
	d, err := judgment.Analyze(results)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", d.Mean, 5},
		{"std", d.Std, math.Sqrt(20.0 / 3.0)},
		{"iqr", d.IQR, 4},
		{"catastrophic_rate", d.CatastrophicRate, 0.25},
		{"avg_time_to_action", d.AvgTimeToAction, 4},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if d.NRuns != 4 || d.Agent != judgment.HighExecution {
		t.Errorf("n=%d agent=%s", d.NRuns, d.Agent)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	if _, err := judgment.Analyze(nil); !errors.Is(err, stats.ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestHypotheses(t *testing.T) {
	tests := []struct {
		name       string
		a, b, d    judgment.Distribution
		h1, h2, h3 bool
	}{
		{
			name: "structure compresses",
			a:    judgment.Distribution{Std: 0},
			b:    judgment.Distribution{Std: 2.5},
			d:    judgment.Distribution{Std: 1.0},
			h1:   true, h2: true, h3: true,
		},
		{
			name: "structure barely helps",
			a:    judgment.Distribution{Std: 0},
			b:    judgment.Distribution{Std: 2.0},
			d:    judgment.Distribution{Std: 1.5},
			h1:   true, h2: true, h3: false,
		},
		{
			name: "judgment alone fails",
			a:    judgment.Distribution{Std: 3, CatastrophicRate: 0.1},
			b:    judgment.Distribution{Std: 2},
			d:    judgment.Distribution{Std: 1},
			h1:   false, h2: false, h3: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := judgment.Test(map[judgment.AgentType]judgment.Distribution{
				judgment.JudgmentOnly:  tt.a,
				judgment.HighExecution: tt.b,
				judgment.Structured:    tt.d,
			})
			if got[judgment.H1].Result != tt.h1 || got[judgment.H2].Result != tt.h2 || got[judgment.H3].Result != tt.h3 {
				t.Errorf("H1=%v H2=%v H3=%v, want %v %v %v",
					got[judgment.H1].Result, got[judgment.H2].Result, got[judgment.H3].Result, tt.h1, tt.h2, tt.h3)
			}
		})
	}
}

func TestRun_Default(t *testing.T) {
	res, err := judgment.Run(context.Background(), judgment.DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, a := range judgment.AgentTypes {
		if got := len(res.Qualities[a]); got != 100 {
			t.Errorf("%s: %d qualities, want 100", a, got)
		}
		if res.Metrics[a].NRuns != 100 {
			t.Errorf("%s: n_runs = %d", a, res.Metrics[a].NRuns)
		}
	}

	a := res.Metrics[judgment.JudgmentOnly]
	if math.Abs(a.Mean-3) > 1e-9 || a.Std > 1e-9 || a.CatastrophicRate != 0 {
		t.Errorf("judgment-only metrics = %+v, want constant 3 with no catastrophe", a)
	}
	if res.Metrics[judgment.HighExecution].CatastrophicRate == 0 {
		t.Error("high-execution agent had no catastrophes")
	}
	if !res.Hypotheses[judgment.H1].Result || !res.Hypotheses[judgment.H2].Result {
		t.Errorf("hypotheses = %+v, want H1 and H2 to hold", res.Hypotheses)
	}

	all := true
	for _, h := range res.Hypotheses {
		all = all && h.Result
	}
	if res.AllPassed != all {
		t.Errorf("AllPassed = %v, want %v", res.AllPassed, all)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := judgment.DefaultConfig()
	cfg.Runs = 20
	a, _ := judgment.Run(context.Background(), cfg)
	b, _ := judgment.Run(context.Background(), cfg)
	for _, agent := range judgment.AgentTypes {
		if a.Metrics[agent] != b.Metrics[agent] {
			t.Errorf("%s metrics differ across identical runs", agent)
		}
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  judgment.Config
	}{
		{"zero runs", judgment.Config{Runs: 0, MaxTurns: 10}},
		{"zero turns", judgment.Config{Runs: 10, MaxTurns: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := judgment.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
