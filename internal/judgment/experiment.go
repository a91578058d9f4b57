package judgment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/stats"
)

// catastropheThreshold is the raw outcome below which an executed run is
// catastrophic.
const catastropheThreshold = 0.1

// RunResult is one agent acting on one task.
type RunResult struct {
	Agent                AgentType `json:"agent"`
	RunID                int64     `json:"run_id"`
	OutcomeQuality       float64   `json:"outcome_quality"`
	IsCatastrophic       bool      `json:"is_catastrophic"`
	TimeToAction         int       `json:"time_to_action"`
	ExecutionCount       int       `json:"execution_count"`
	VarianceContribution float64   `json:"variance_contribution"`
}

// Simulate plays maxTurns turns of the task drawn from seed.
//
// TimeToAction is the turn of the first execution, or maxTurns when the
// agent never executed or first executed on turn 0.
func Simulate(agent AgentType, seed int64, maxTurns int) RunResult {
	task := NewTask(seed)
	a := NewAgent(agent)

	outcome, executed := 0.0, false
	for i := 0; i < maxTurns; i++ {
		if o, ok := a.Decide(task); ok {
			outcome, executed = o, true
		}
		task.Advance()
	}
	if !executed {
		outcome = agent.defaultOutcome()
	}

	tta := maxTurns
	if a.FirstExecutionTurn > 0 {
		tta = a.FirstExecutionTurn
	}

	return RunResult{
		Agent:                agent,
		RunID:                seed,
		OutcomeQuality:       stats.Clamp(outcome, 0, 1) * 10,
		IsCatastrophic:       outcome < catastropheThreshold && a.Executions > 0,
		TimeToAction:         tta,
		ExecutionCount:       a.Executions,
		VarianceContribution: math.Abs(outcome - 0.5),
	}
}

// Distribution summarizes the runs of one agent. CatastrophicRate is a
// fraction in [0, 1]; Std is the sample standard deviation of quality.
type Distribution struct {
	Agent            AgentType `json:"agent"`
	Mean             float64   `json:"mean"`
	Std              float64   `json:"std"`
	IQR              float64   `json:"iqr"`
	CatastrophicRate float64   `json:"catastrophic_rate"`
	AvgTimeToAction  float64   `json:"avg_time_to_action"`
	NRuns            int       `json:"n_runs"`
}

// Analyze summarizes results, which must all belong to one agent.
func Analyze(results []RunResult) (Distribution, error) {
	if len(results) == 0 {
		return Distribution{}, fmt.Errorf("analyze: %w", stats.ErrEmpty)
	}

	qualities := Qualities(results)
	times := make([]int, len(results))
	catastrophic := 0
	for i, r := range results {
		times[i] = r.TimeToAction
		if r.IsCatastrophic {
			catastrophic++
		}
	}

	mean, err := stats.Mean(qualities)
	if err != nil {
		return Distribution{}, err
	}
	std, err := stats.SampleStd(qualities)
	if err != nil {
		return Distribution{}, err
	}
	iqr, err := stats.IndexIQR(qualities)
	if err != nil {
		return Distribution{}, err
	}
	avgTime, err := stats.Mean(times)
	if err != nil {
		return Distribution{}, err
	}

	return Distribution{
		Agent:            results[0].Agent,
		Mean:             mean,
		Std:              std,
		IQR:              iqr,
		CatastrophicRate: float64(catastrophic) / float64(len(results)),
		AvgTimeToAction:  avgTime,
		NRuns:            len(results),
	}, nil
}

// Qualities returns the outcome quality of every run.
func Qualities(results []RunResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.OutcomeQuality
	}
	return out
}

// Hypothesis is one claim checked against the distributions.
type Hypothesis struct {
	Description string `json:"description"`
	Result      bool   `json:"result"`
}

// Hypothesis ids.
const (
	H1 = "H1" // execution amplifies variance
	H2 = "H2" // judgment alone has no catastrophe
	H3 = "H3" // structure compresses variance
)

// maxJudgmentOnlyCatastrophe and compressionRatio bound H2 and H3.
const (
	maxJudgmentOnlyCatastrophe = 0.05
	compressionRatio           = 0.7
)

// Test evaluates H1..H3. metrics must hold every agent.
func Test(metrics map[AgentType]Distribution) map[string]Hypothesis {
	a, b, d := metrics[JudgmentOnly], metrics[HighExecution], metrics[Structured]
	return map[string]Hypothesis{
		H1: {
			Description: "Execution amplifies variance",
			Result:      b.Std > a.Std && b.Std > d.Std,
		},
		H2: {
			Description: "Judgment alone no catastrophe",
			Result:      a.CatastrophicRate < maxJudgmentOnlyCatastrophe,
		},
		H3: {
			Description: "Structure compresses variance",
			Result:      d.Std < b.Std*compressionRatio,
		},
	}
}

// Config controls an experiment.
type Config struct {
	Runs     int
	MaxTurns int

	// BaseSeed is the seed of the first run; run i uses BaseSeed+i.
	BaseSeed int64

	// Observer, when set, sees every run.
	Observer func(r RunResult)
}

// DefaultConfig returns 100 runs of 10 turns over seeds 0..99.
func DefaultConfig() Config {
	return Config{
		Runs:     constants.DefaultJudgmentRuns,
		MaxTurns: constants.DefaultJudgmentMaxTurns,
	}
}

// Result is the experiment document.
type Result struct {
	Experiment string                     `json:"experiment"`
	Timestamp  time.Time                  `json:"timestamp"`
	NRuns      int                        `json:"n_runs"`
	MaxTurns   int                        `json:"max_turns"`
	BaseSeed   int64                      `json:"base_seed"`
	Hypotheses map[string]Hypothesis      `json:"hypotheses"`
	Metrics    map[AgentType]Distribution `json:"metrics"`
	Qualities  map[AgentType][]float64    `json:"qualities"`
	Runs       map[AgentType][]RunResult  `json:"-"`
	AllPassed  bool                       `json:"all_passed"`
}

// Run simulates every agent on runs tasks. Each agent sees the same task
// sequence.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", cfg.Runs)
	}
	if cfg.MaxTurns <= 0 {
		return nil, fmt.Errorf("max turns must be positive, got %d", cfg.MaxTurns)
	}

	res := &Result{
		Experiment: "Judgment vs Execution",
		Timestamp:  time.Now().UTC(),
		NRuns:      cfg.Runs,
		MaxTurns:   cfg.MaxTurns,
		BaseSeed:   cfg.BaseSeed,
		Metrics:    make(map[AgentType]Distribution, len(AgentTypes)),
		Qualities:  make(map[AgentType][]float64, len(AgentTypes)),
		Runs:       make(map[AgentType][]RunResult, len(AgentTypes)),
	}

	for _, agent := range AgentTypes {
		runs := make([]RunResult, cfg.Runs)
		for i := range runs {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("agent %s interrupted after %d runs: %w", agent, i, err)
			}
			runs[i] = Simulate(agent, cfg.BaseSeed+int64(i), cfg.MaxTurns)
			if cfg.Observer != nil {
				cfg.Observer(runs[i])
			}
		}

		dist, err := Analyze(runs)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", agent, err)
		}
		res.Metrics[agent] = dist
		res.Qualities[agent] = Qualities(runs)
		res.Runs[agent] = runs
	}

	res.Hypotheses = Test(res.Metrics)
	res.AllPassed = true
	for _, h := range res.Hypotheses {
		res.AllPassed = res.AllPassed && h.Result
	}
	return res, nil
}
