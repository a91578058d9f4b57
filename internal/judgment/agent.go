package judgment

import (
	"fmt"
	"math"
)

// AgentType names an execution policy.
type AgentType string

const (
	// JudgmentOnly observes and never executes.
	JudgmentOnly AgentType = "A"
	// HighExecution executes as soon as the signal looks good.
	HighExecution AgentType = "B"
	// DelayedExecution waits a fixed number of turns before executing.
	DelayedExecution AgentType = "C"
	// Structured executes only after the condition change, on a consistent signal.
	Structured AgentType = "D"
)

// AgentTypes lists the agents in report order.
var AgentTypes = []AgentType{JudgmentOnly, HighExecution, DelayedExecution, Structured}

// ParseAgentType parses "A".."D".
func ParseAgentType(s string) (AgentType, error) {
	for _, a := range AgentTypes {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown agent %q (want A, B, C or D)", s)
}

// Name returns the long name of the policy.
func (a AgentType) Name() string {
	switch a {
	case JudgmentOnly:
		return "JUDGMENT_ONLY"
	case HighExecution:
		return "HIGH_EXECUTION"
	case DelayedExecution:
		return "DELAYED_EXECUTION"
	case Structured:
		return "STRUCTURED_V7"
	default:
		return "UNKNOWN"
	}
}

// defaultOutcome is the outcome of a run in which the agent never executed.
func (a AgentType) defaultOutcome() float64 {
	switch a {
	case JudgmentOnly:
		return 0.3
	case Structured:
		return 0.5
	default:
		return 0
	}
}

// Policy thresholds.
const (
	highExecutionSignal    = 0.4
	delayedExecutionTurn   = 3
	delayedExecutionSignal = 0.5
	structuredConsistency  = 0.5
	structuredSignal       = 0.45
)

// Agent accumulates judgments and executions over one run.
type Agent struct {
	Type       AgentType
	Judgments  []float64
	Executions int

	// FirstExecutionTurn is -1 until the agent executes.
	FirstExecutionTurn int
}

// NewAgent returns an agent that has not acted yet.
func NewAgent(t AgentType) *Agent {
	return &Agent{Type: t, FirstExecutionTurn: -1}
}

// Decide reads the turn's signal and, if the policy allows, executes. It
// returns the task outcome and true when the agent executed this turn.
func (a *Agent) Decide(task *Task) (float64, bool) {
	signal := task.Signal()
	a.Judgments = append(a.Judgments, signal)

	var act bool
	switch a.Type {
	case HighExecution:
		act = signal > highExecutionSignal
	case DelayedExecution:
		act = task.Turn >= delayedExecutionTurn && signal > delayedExecutionSignal
	case Structured:
		act = task.Turn >= task.State.ConditionChangeAt && a.consistent(signal)
	}
	if !act {
		return 0, false
	}
	return a.execute(task, signal), true
}

func (a *Agent) execute(task *Task, quality float64) float64 {
	if a.FirstExecutionTurn < 0 {
		a.FirstExecutionTurn = task.Turn
	}
	a.Executions++
	return task.Execute(quality)
}

// consistent reports whether the last two judgments agree and the current
// signal clears the structured threshold.
func (a *Agent) consistent(signal float64) bool {
	n := len(a.Judgments)
	if n < 2 {
		return false
	}
	consistency := 1 - math.Abs(a.Judgments[n-2]-a.Judgments[n-1])
	return consistency > structuredConsistency && signal > structuredSignal
}
