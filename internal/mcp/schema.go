// Package mcp provides an MCP (Model Context Protocol) server for structsim.
package mcp

import (
	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/store"
	"github.com/nvandessel/structsim/internal/stress"
)

// PerformanceInput defines the input for structsim_performance tool.
type PerformanceInput struct {
	Samples int   `json:"samples,omitempty" jsonschema:"Trials per architecture (default: configured performance.samples)"`
	Seed    int64 `json:"seed,omitempty" jsonschema:"PRNG seed (default: configured seed)"`
	Save    bool  `json:"save,omitempty" jsonschema:"Write the result document and record the run in history (default: false)"`
}

// PerformanceOutput defines the output for structsim_performance tool.
type PerformanceOutput struct {
	Samples    int               `json:"n_samples" jsonschema:"Trials per architecture"`
	Seed       int64             `json:"seed" jsonschema:"PRNG seed used"`
	Summaries  []metrics.Summary `json:"summaries" jsonschema:"Outcome summary per architecture (S1, S2, V7)"`
	Best       string            `json:"best" jsonschema:"Architecture with the highest effective performance"`
	ResultPath string            `json:"result_path,omitempty" jsonschema:"Written result document (when save is set)"`
	RunID      string            `json:"run_id,omitempty" jsonschema:"History run id (when save is set)"`
}

// StressInput defines the input for structsim_stress tool.
type StressInput struct {
	Samples       int       `json:"samples,omitempty" jsonschema:"Trials per condition (default: configured stress.samples)"`
	Seed          int64     `json:"seed,omitempty" jsonschema:"PRNG seed (default: configured seed)"`
	ErosionLevels []float64 `json:"erosion_levels,omitempty" jsonschema:"Structure erosion sweep, each in [0, 1] (default: 0 to 0.5 in steps of 0.1)"`
	Drift         bool      `json:"drift,omitempty" jsonschema:"Add a V7 row whose erosion drifts across the run (default: configured stress.drift.enabled)"`
	Save          bool      `json:"save,omitempty" jsonschema:"Write the result document and record the run in history (default: false)"`
}

// StressOutput defines the output for structsim_stress tool.
type StressOutput struct {
	Samples    int                        `json:"n_samples" jsonschema:"Trials per condition"`
	Seed       int64                      `json:"seed" jsonschema:"PRNG seed used"`
	Results    map[string]metrics.Summary `json:"results" jsonschema:"Summary per condition label, e.g. twist2_S1"`
	Deltas     map[string]float64         `json:"effective_delta" jsonschema:"Effective performance change against baseline per label"`
	Erosion    []stress.ErosionPoint      `json:"erosion_sweep" jsonschema:"V7 summary per erosion level"`
	Drift      *metrics.Summary           `json:"drift_V7,omitempty" jsonschema:"V7 summary under drifting erosion"`
	Verdict    stress.Verdict             `json:"verdict" jsonschema:"Suite claims"`
	Passed     bool                       `json:"all_passed" jsonschema:"Whether every claim holds"`
	ResultPath string                     `json:"result_path,omitempty" jsonschema:"Written result document (when save is set)"`
	RunID      string                     `json:"run_id,omitempty" jsonschema:"History run id (when save is set)"`
}

// StateSpaceInput defines the input for structsim_statespace tool.
type StateSpaceInput struct {
	Samples int   `json:"samples,omitempty" jsonschema:"Samples per system (default: configured statespace.samples)"`
	Seed    int64 `json:"seed,omitempty" jsonschema:"PRNG seed (default: configured seed)"`
	Save    bool  `json:"save,omitempty" jsonschema:"Write the result document and record the run in history (default: false)"`
}

// StateSpaceSystem is the tally of one system.
type StateSpaceSystem struct {
	System           string                 `json:"system"`
	Counts           metrics.CategoryCounts `json:"counts"`
	CatastrophicRate float64                `json:"catastrophic_rate"`
	DangerOccupancy  float64                `json:"danger_occupancy"`
}

// StateSpaceOutput defines the output for structsim_statespace tool.
type StateSpaceOutput struct {
	Samples    int                `json:"n_samples" jsonschema:"Samples per system"`
	Seed       int64              `json:"seed" jsonschema:"PRNG seed used"`
	Systems    []StateSpaceSystem `json:"systems" jsonschema:"Outcome tally per system (S1, S2, S3_V7)"`
	ResultPath string             `json:"result_path,omitempty" jsonschema:"Written result document (when save is set)"`
	RunID      string             `json:"run_id,omitempty" jsonschema:"History run id (when save is set)"`
}

// JudgmentInput defines the input for structsim_judgment tool.
type JudgmentInput struct {
	Runs     int   `json:"runs,omitempty" jsonschema:"Tasks per agent (default: configured judgment.runs)"`
	MaxTurns int   `json:"max_turns,omitempty" jsonschema:"Turns per task (default: configured judgment.max_turns)"`
	BaseSeed int64 `json:"base_seed,omitempty" jsonschema:"Seed of the first task; task i uses base_seed+i (default: configured judgment.base_seed)"`
	Save     bool  `json:"save,omitempty" jsonschema:"Write the result document and record the run in history (default: false)"`
}

// JudgmentOutput defines the output for structsim_judgment tool.
type JudgmentOutput struct {
	Runs       int                                          `json:"n_runs" jsonschema:"Tasks per agent"`
	BaseSeed   int64                                        `json:"base_seed" jsonschema:"Seed of the first task"`
	Hypotheses map[string]judgment.Hypothesis               `json:"hypotheses" jsonschema:"H1..H3 with their results"`
	Metrics    map[judgment.AgentType]judgment.Distribution `json:"metrics" jsonschema:"Quality distribution per agent (A, B, C, D)"`
	AllPassed  bool                                         `json:"all_passed" jsonschema:"Whether every hypothesis holds"`
	ResultPath string                                       `json:"result_path,omitempty" jsonschema:"Written result document (when save is set)"`
	RunID      string                                       `json:"run_id,omitempty" jsonschema:"History run id (when save is set)"`
}

// HistoryInput defines the input for structsim_history tool.
type HistoryInput struct {
	ID         string `json:"id,omitempty" jsonschema:"Run id or unique id prefix; returns that run with its summaries"`
	Experiment string `json:"experiment,omitempty" jsonschema:"Filter by experiment: 'performance', 'stress', 'statespace' or 'judgment'"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum runs to list (default: 20)"`
}

// HistoryRun is a recorded run as returned by structsim_history.
type HistoryRun struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Seed       int64              `json:"seed"`
	Samples    int                `json:"samples"`
	Passed     *bool              `json:"passed,omitempty" jsonschema:"Verdict of the run; absent when the experiment has none"`
	StartedAt  string             `json:"started_at" jsonschema:"RFC 3339 start time"`
	DurationMs int64              `json:"duration_ms"`
	ResultPath string             `json:"result_path,omitempty"`
	Summaries  []metrics.Summary  `json:"summaries,omitempty"`
	Hypotheses []store.Hypothesis `json:"hypotheses,omitempty"`
}

// HistoryOutput defines the output for structsim_history tool.
type HistoryOutput struct {
	Runs  []HistoryRun `json:"runs,omitempty" jsonschema:"Recorded runs, newest first"`
	Run   *HistoryRun  `json:"run,omitempty" jsonschema:"The requested run"`
	Count int          `json:"count" jsonschema:"Number of runs returned"`
}
