package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/structsim/internal/metrics"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func boolPtr(b bool) *bool { return &b }

func TestSaveRun_GetRun(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	run := &Run{
		Experiment: "performance",
		Seed:       42,
		Samples:    3000,
		Config:     `{"seed":42}`,
		ResultPath: "results/performance_comparison.json",
		Passed:     boolPtr(true),
		Duration:   1500 * time.Millisecond,
		Summaries: []metrics.Summary{
			{Label: "S1", N: 3000, Mean: 5.61, Std: 2.9, Min: -10, Catastrophic: 94, CatastrophicRate: 3.1, EffectivePerformance: 2.91},
			{Label: "V7", N: 3000, Mean: 6.02, Std: 1.48, Min: 2, EffectivePerformance: 5.28},
		},
		Hypotheses: []Hypothesis{
			{ID: "H2", Description: "Judgment alone no catastrophe", Result: true},
			{ID: "H1", Description: "Execution amplifies variance", Result: false},
		},
	}
	if err := h.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("SaveRun did not assign an id")
	}
	if run.StartedAt.IsZero() {
		t.Fatal("SaveRun did not stamp StartedAt")
	}

	got, err := h.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Experiment != "performance" || got.Seed != 42 || got.Samples != 3000 {
		t.Errorf("run = %+v", got)
	}
	if got.Config != run.Config || got.ResultPath != run.ResultPath {
		t.Errorf("config=%q result=%q", got.Config, got.ResultPath)
	}
	if got.Passed == nil || !*got.Passed {
		t.Errorf("passed = %v, want true", got.Passed)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", got.Duration)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, run.StartedAt)
	}

	if len(got.Summaries) != 2 || got.Summaries[0] != run.Summaries[0] || got.Summaries[1] != run.Summaries[1] {
		t.Errorf("summaries = %+v", got.Summaries)
	}
	if len(got.Hypotheses) != 2 || got.Hypotheses[0].ID != "H1" || got.Hypotheses[0].Result {
		t.Errorf("hypotheses = %+v, want sorted by id", got.Hypotheses)
	}
}

func TestGetRun_Prefix(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	run := &Run{ID: "abc123", Experiment: "stress", Seed: 1, Samples: 10}
	if err := h.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := h.GetRun(ctx, "abc")
	if err != nil {
		t.Fatalf("GetRun(prefix): %v", err)
	}
	if got.ID != "abc123" {
		t.Errorf("id = %s", got.ID)
	}
	if got.Passed != nil {
		t.Errorf("passed = %v, want nil", *got.Passed)
	}

	if err := h.SaveRun(ctx, &Run{ID: "abc456", Experiment: "stress", Seed: 1, Samples: 10}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if _, err := h.GetRun(ctx, "abc"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("err = %v, want ErrAmbiguous", err)
	}
	if got, err := h.GetRun(ctx, "abc456"); err != nil || got.ID != "abc456" {
		t.Errorf("exact lookup = %v, %v", got, err)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	h := openTestHistory(t)
	for _, id := range []string{"", "missing"} {
		if _, err := h.GetRun(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetRun(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestListRuns(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []*Run{
		{ID: "r1", Experiment: "performance", StartedAt: base},
		{ID: "r2", Experiment: "stress", StartedAt: base.Add(time.Minute)},
		{ID: "r3", Experiment: "performance", StartedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range runs {
		if err := h.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun %s: %v", r.ID, err)
		}
	}

	tests := []struct {
		name       string
		experiment string
		limit      int
		want       []string
	}{
		{"all newest first", "", 0, []string{"r3", "r2", "r1"}},
		{"filtered", "performance", 0, []string{"r3", "r1"}},
		{"limited", "", 2, []string{"r3", "r2"}},
		{"unknown experiment", "judgment", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.ListRuns(ctx, tt.experiment, tt.limit)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d runs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("runs[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestDeleteRun_Cascades(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	run := &Run{Experiment: "judgment", Summaries: []metrics.Summary{{Label: "A"}}, Hypotheses: []Hypothesis{{ID: "H1"}}}
	if err := h.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := h.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}

	var n int
	if err := h.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM summaries`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d summaries left after delete", n)
	}
	if err := h.DeleteRun(ctx, run.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	if err := h.SaveRun(ctx, &Run{ID: "dup", Experiment: "stress"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	err := h.SaveRun(ctx, &Run{ID: "dup", Experiment: "stress", Summaries: []metrics.Summary{{Label: "x"}}})
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}

	got, err := h.GetRun(ctx, "dup")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Summaries) != 0 {
		t.Errorf("failed save leaked %d summaries", len(got.Summaries))
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := h.SaveRun(ctx, &Run{ID: "keep", Experiment: "statespace"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	h.Close()

	h, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h.Close()

	if h.Path() != path {
		t.Errorf("Path() = %q", h.Path())
	}
	if _, err := h.GetRun(ctx, "keep"); err != nil {
		t.Errorf("run lost across reopen: %v", err)
	}
	version, err := getSchemaVersion(ctx, h.db)
	if err != nil || version != SchemaVersion {
		t.Errorf("schema version = %d, %v", version, err)
	}
}
