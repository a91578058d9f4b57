package report

import (
	"context"
	"testing"

	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/statespace"
)

func TestPerformanceRun(t *testing.T) {
	res := smallPerformance(t)
	run := PerformanceRun(res)

	if run.Experiment != "performance" || run.Seed != 42 || run.Samples != 300 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Summaries) != 3 {
		t.Fatalf("summaries = %d, want 3", len(run.Summaries))
	}
	for i, want := range []string{"S1", "S2", "V7"} {
		if run.Summaries[i].Label != want {
			t.Errorf("summaries[%d] = %s, want %s", i, run.Summaries[i].Label, want)
		}
	}
	if run.Passed == nil || !*run.Passed {
		t.Error("V7 should have the highest effective performance")
	}
}

func TestStressRun(t *testing.T) {
	res := smallStress(t)
	run := StressRun(res)

	want := len(res.Erosion) + 1
	for _, cr := range res.Conditions {
		want += len(cr.Condition.Systems)
	}
	if len(run.Summaries) != want {
		t.Errorf("summaries = %d, want %d", len(run.Summaries), want)
	}
	if run.Summaries[0].Label != "baseline_S1" {
		t.Errorf("first label = %s, want baseline_S1", run.Summaries[0].Label)
	}
	if last := run.Summaries[len(run.Summaries)-1].Label; last != "drift_V7" {
		t.Errorf("last label = %s, want drift_V7", last)
	}
	if len(run.Hypotheses) != 3 {
		t.Errorf("hypotheses = %d, want 3", len(run.Hypotheses))
	}
	if run.Passed == nil || *run.Passed != res.Verdict.Passed() {
		t.Errorf("passed = %v, verdict %v", run.Passed, res.Verdict.Passed())
	}
}

func TestStateSpaceRun(t *testing.T) {
	cfg := statespace.DefaultConfig()
	cfg.Samples = 200
	res, err := statespace.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("statespace.Run: %v", err)
	}

	run := StateSpaceRun(res)
	if run.Passed != nil {
		t.Error("state-space runs carry no verdict")
	}
	if len(run.Summaries) != 3 || run.Summaries[2].Label != "S3_V7" {
		t.Fatalf("summaries = %+v", run.Summaries)
	}
	for _, s := range run.Summaries {
		if s.N != 200 {
			t.Errorf("%s: n = %d, want 200", s.Label, s.N)
		}
	}
}

func TestJudgmentRun(t *testing.T) {
	cfg := judgment.DefaultConfig()
	cfg.Runs = 40
	res, err := judgment.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("judgment.Run: %v", err)
	}

	run := JudgmentRun(res)
	if run.Samples != 40 || run.Seed != 0 {
		t.Errorf("samples = %d, seed = %d", run.Samples, run.Seed)
	}
	if len(run.Summaries) != 4 || run.Summaries[0].Label != "A" || run.Summaries[3].Label != "D" {
		t.Fatalf("summaries = %+v", run.Summaries)
	}
	ids := []string{"H1", "H2", "H3"}
	if len(run.Hypotheses) != len(ids) {
		t.Fatalf("hypotheses = %+v", run.Hypotheses)
	}
	for i, id := range ids {
		if run.Hypotheses[i].ID != id {
			t.Errorf("hypotheses[%d] = %s, want %s", i, run.Hypotheses[i].ID, id)
		}
	}
	if *run.Passed != res.AllPassed {
		t.Errorf("passed = %v, want %v", *run.Passed, res.AllPassed)
	}
}
