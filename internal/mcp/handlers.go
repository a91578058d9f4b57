package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/structsim/internal/config"
	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/pathutil"
	"github.com/nvandessel/structsim/internal/performance"
	"github.com/nvandessel/structsim/internal/ratelimit"
	"github.com/nvandessel/structsim/internal/report"
	"github.com/nvandessel/structsim/internal/statespace"
	"github.com/nvandessel/structsim/internal/stats"
	"github.com/nvandessel/structsim/internal/store"
	"github.com/nvandessel/structsim/internal/stress"
)

// RecentRunsURI is the resource listing the latest recorded runs.
const RecentRunsURI = "structsim://history/recent"

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	recentRunsShown     = 10
)

// registerTools registers all structsim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolPerformance,
		Description: "Compare outcome distributions of the S1, S2 and V7 architectures (mean, std, catastrophic rate, effective performance)",
	}, s.handlePerformance)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolStress,
		Description: "Run the adversarial stress suite: five twists, a structure erosion sweep and an optional drifting-erosion row",
	}, s.handleStress)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolStateSpace,
		Description: "Sample the five-axis state space per system and tally success, fail and catastrophic outcomes",
	}, s.handleStateSpace)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolJudgment,
		Description: "Run the judgment-versus-execution experiment for agents A-D and test hypotheses H1-H3",
	}, s.handleJudgment)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolHistory,
		Description: "List recorded experiment runs or show one run with its summaries",
	}, s.handleHistory)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         RecentRunsURI,
		Name:        "structsim-recent-runs",
		Description: "The most recent experiment runs and whether their claims held.",
		MIMEType:    "text/markdown",
	}, s.handleRecentRunsResource)
}

// handleRecentRunsResource renders the latest runs as a markdown table.
func (s *Server) handleRecentRunsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var sb strings.Builder
	sb.WriteString("# Recent structsim runs\n\n")

	switch {
	case s.history == nil:
		sb.WriteString("Run history is disabled.\n")
	default:
		runs, err := s.history.ListRuns(ctx, "", recentRunsShown)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			sb.WriteString("No runs recorded yet. Save one with `save: true` on any experiment tool.\n")
			break
		}
		sb.WriteString("| id | experiment | seed | samples | passed | started |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, r := range runs {
			fmt.Fprintf(&sb, "| %s | %s | %d | %d | %s | %s |\n",
				shortID(r.ID), r.Experiment, r.Seed, r.Samples, passedLabel(r.Passed), r.StartedAt.Format(time.RFC3339))
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      RecentRunsURI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// handlePerformance implements the structsim_performance tool.
func (s *Server) handlePerformance(ctx context.Context, req *sdk.CallToolRequest, args PerformanceInput) (_ *sdk.CallToolResult, out PerformanceOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolPerformance, start, retErr, auditParams(map[string]any{
			"samples": args.Samples, "seed": args.Seed, "save": args.Save,
		}), out.RunID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolPerformance); err != nil {
		return nil, PerformanceOutput{}, err
	}

	settings := s.requestSettings(args.Seed)
	samples, err := s.samples(args.Samples, settings.Performance.Samples)
	if err != nil {
		return nil, PerformanceOutput{}, err
	}
	settings.Performance.Samples = samples

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := performance.Run(ctx, settings.ForPerformance())
	if err != nil {
		return nil, PerformanceOutput{}, fmt.Errorf("performance comparison failed: %w", err)
	}

	out = PerformanceOutput{
		Samples:   res.Samples,
		Seed:      res.Seed,
		Summaries: res.Summaries(),
	}
	if best, ok := metrics.Best(out.Summaries); ok {
		out.Best = best.Label
	}

	if args.Save {
		out.ResultPath, out.RunID, err = s.save(ctx, settings, start, report.PerformanceRun(res),
			constants.PerformanceResultFile, report.NewPerformanceDocument(res))
		if err != nil {
			return nil, PerformanceOutput{}, err
		}
	}

	return nil, out, nil
}

// handleStress implements the structsim_stress tool.
func (s *Server) handleStress(ctx context.Context, req *sdk.CallToolRequest, args StressInput) (_ *sdk.CallToolResult, out StressOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolStress, start, retErr, auditParams(map[string]any{
			"samples": args.Samples, "seed": args.Seed, "erosion_levels": args.ErosionLevels,
			"drift": args.Drift, "save": args.Save,
		}), out.RunID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolStress); err != nil {
		return nil, StressOutput{}, err
	}

	settings := s.requestSettings(args.Seed)
	samples, err := s.samples(args.Samples, settings.Stress.Samples)
	if err != nil {
		return nil, StressOutput{}, err
	}
	settings.Stress.Samples = samples
	if len(args.ErosionLevels) > 0 {
		settings.Stress.ErosionLevels = args.ErosionLevels
	}
	if args.Drift {
		settings.Stress.Drift.Enabled = true
	}
	if err := settings.Validate(); err != nil {
		return nil, StressOutput{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := stress.RunSuite(ctx, settings.ForStress())
	if err != nil {
		return nil, StressOutput{}, fmt.Errorf("stress suite failed: %w", err)
	}

	out = StressOutput{
		Samples: res.Samples,
		Seed:    res.Seed,
		Results: res.Flat(),
		Deltas:  make(map[string]float64),
		Erosion: res.Erosion,
		Drift:   res.Drift,
		Verdict: res.Verdict,
		Passed:  res.Verdict.Passed(),
	}
	for _, cr := range res.Conditions {
		for arch, d := range cr.Deltas {
			out.Deltas[stress.Label(cr.Condition.Key, arch)] = stats.Round(d, 2)
		}
	}

	if args.Save {
		out.ResultPath, out.RunID, err = s.save(ctx, settings, start, report.StressRun(res),
			constants.StressResultFile, report.NewStressDocument(res))
		if err != nil {
			return nil, StressOutput{}, err
		}
	}

	return nil, out, nil
}

// handleStateSpace implements the structsim_statespace tool.
func (s *Server) handleStateSpace(ctx context.Context, req *sdk.CallToolRequest, args StateSpaceInput) (_ *sdk.CallToolResult, out StateSpaceOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolStateSpace, start, retErr, auditParams(map[string]any{
			"samples": args.Samples, "seed": args.Seed, "save": args.Save,
		}), out.RunID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolStateSpace); err != nil {
		return nil, StateSpaceOutput{}, err
	}

	settings := s.requestSettings(args.Seed)
	samples, err := s.samples(args.Samples, settings.StateSpace.Samples)
	if err != nil {
		return nil, StateSpaceOutput{}, err
	}
	settings.StateSpace.Samples = samples

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := statespace.Run(ctx, settings.ForStateSpace())
	if err != nil {
		return nil, StateSpaceOutput{}, fmt.Errorf("state-space sampling failed: %w", err)
	}

	out = StateSpaceOutput{Samples: res.Samples, Seed: res.Seed}
	for _, sys := range res.Systems {
		out.Systems = append(out.Systems, StateSpaceSystem{
			System:           sys.System,
			Counts:           sys.Counts,
			CatastrophicRate: sys.CatastrophicRate,
			DangerOccupancy:  sys.DangerOccupancy,
		})
	}

	if args.Save {
		out.ResultPath, out.RunID, err = s.save(ctx, settings, start, report.StateSpaceRun(res),
			constants.StateSpaceResultFile, report.StateSpaceDocument(res))
		if err != nil {
			return nil, StateSpaceOutput{}, err
		}
	}

	return nil, out, nil
}

// handleJudgment implements the structsim_judgment tool.
func (s *Server) handleJudgment(ctx context.Context, req *sdk.CallToolRequest, args JudgmentInput) (_ *sdk.CallToolResult, out JudgmentOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolJudgment, start, retErr, auditParams(map[string]any{
			"runs": args.Runs, "max_turns": args.MaxTurns, "base_seed": args.BaseSeed, "save": args.Save,
		}), out.RunID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolJudgment); err != nil {
		return nil, JudgmentOutput{}, err
	}

	settings := s.requestSettings(0)
	runs, err := s.samples(args.Runs, settings.Judgment.Runs)
	if err != nil {
		return nil, JudgmentOutput{}, err
	}
	turns, err := s.samples(args.MaxTurns, settings.Judgment.MaxTurns)
	if err != nil {
		return nil, JudgmentOutput{}, fmt.Errorf("max_turns: %w", err)
	}
	settings.Judgment.Runs = runs
	settings.Judgment.MaxTurns = turns
	if args.BaseSeed != 0 {
		settings.Judgment.BaseSeed = args.BaseSeed
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := judgment.Run(ctx, settings.ForJudgment())
	if err != nil {
		return nil, JudgmentOutput{}, fmt.Errorf("judgment experiment failed: %w", err)
	}

	out = JudgmentOutput{
		Runs:       res.NRuns,
		BaseSeed:   res.BaseSeed,
		Hypotheses: res.Hypotheses,
		Metrics:    res.Metrics,
		AllPassed:  res.AllPassed,
	}

	if args.Save {
		out.ResultPath, out.RunID, err = s.save(ctx, settings, start, report.JudgmentRun(res),
			constants.JudgmentResultFile, report.JudgmentDocument(res))
		if err != nil {
			return nil, JudgmentOutput{}, err
		}
	}

	return nil, out, nil
}

// handleHistory implements the structsim_history tool.
func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolHistory, start, retErr, auditParams(map[string]any{
			"id": args.ID, "experiment": args.Experiment, "limit": args.Limit,
		}), "")
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolHistory); err != nil {
		return nil, HistoryOutput{}, err
	}

	if s.history == nil {
		return nil, HistoryOutput{}, fmt.Errorf("run history is disabled (history.enabled: false)")
	}

	if args.ID != "" {
		run, err := s.history.GetRun(ctx, args.ID)
		if err != nil {
			return nil, HistoryOutput{}, err
		}
		hr := toHistoryRun(*run)
		return nil, HistoryOutput{Run: &hr, Count: 1}, nil
	}

	if args.Experiment != "" && !constants.Experiment(args.Experiment).Valid() {
		return nil, HistoryOutput{}, fmt.Errorf("invalid experiment: %s (valid: performance, stress, statespace, judgment)", args.Experiment)
	}

	limit := args.Limit
	switch {
	case limit < 0:
		return nil, HistoryOutput{}, fmt.Errorf("limit must be non-negative, got %d", limit)
	case limit == 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	runs, err := s.history.ListRuns(ctx, args.Experiment, limit)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	out := HistoryOutput{Runs: make([]HistoryRun, 0, len(runs)), Count: len(runs)}
	for _, r := range runs {
		out.Runs = append(out.Runs, toHistoryRun(r))
	}
	return nil, out, nil
}

// requestSettings copies the server settings for one call. A non-zero seed
// overrides the configured one; a zero result is replaced by a fresh seed.
func (s *Server) requestSettings(seed int64) *config.Config {
	settings := *s.settings
	settings.Stress.ErosionLevels = append([]float64(nil), s.settings.Stress.ErosionLevels...)
	if seed != 0 {
		settings.Seed = seed
	}
	if settings.Seed == 0 {
		settings.Seed = entropy.CryptoSeed()
	}
	return &settings
}

// samples resolves a requested count against the configured default and the
// MCP cap.
func (s *Server) samples(requested, fallback int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("sample count must be positive, got %d", requested)
	case requested == 0:
		return fallback, nil
	case requested > s.settings.MCP.MaxSamples:
		return 0, fmt.Errorf("sample count %d exceeds limit %d (mcp.max_samples)", requested, s.settings.MCP.MaxSamples)
	}
	return requested, nil
}

// withTimeout bounds a tool call by mcp.tool_timeout when set.
func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.MCP.ToolTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.MCP.ToolTimeout)
}

// save writes the result document and records the run. The run id is empty
// when history is disabled.
func (s *Server) save(ctx context.Context, settings *config.Config, start time.Time, run *store.Run, name string, doc any) (string, string, error) {
	path, size, err := report.WriteJSON(settings.ResultsDir, name, doc)
	if err != nil {
		return "", "", fmt.Errorf("failed to write result under %s: %w", pathutil.RedactPath(settings.ResultsDir), err)
	}
	s.logger.Info("result written", "path", path, "bytes", size)

	if s.history == nil {
		return path, "", nil
	}

	run.Config = settings.Snapshot()
	run.ResultPath = path
	run.StartedAt = start
	run.Duration = time.Since(start)
	if err := s.history.SaveRun(ctx, run); err != nil {
		return path, "", fmt.Errorf("failed to record run: %w", err)
	}
	return path, run.ID, nil
}

func toHistoryRun(r store.Run) HistoryRun {
	return HistoryRun{
		ID:         r.ID,
		Experiment: r.Experiment,
		Seed:       r.Seed,
		Samples:    r.Samples,
		Passed:     r.Passed,
		StartedAt:  r.StartedAt.Format(time.RFC3339),
		DurationMs: r.Duration.Milliseconds(),
		ResultPath: r.ResultPath,
		Summaries:  r.Summaries,
		Hypotheses: r.Hypotheses,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func passedLabel(p *bool) string {
	switch {
	case p == nil:
		return "-"
	case *p:
		return "yes"
	default:
		return "no"
	}
}
