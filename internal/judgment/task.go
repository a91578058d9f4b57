// Package judgment runs the judgment-versus-execution experiment: four agents
// with the same judgment signal but different execution policies act on
// ambiguous tasks whose conditions change mid-way. Variance comes from when
// and how agents execute, not from how well they judge.
package judgment

import (
	"math/rand"

	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/stats"
)

// TaskState is the hidden shape of one task.
type TaskState struct {
	// Ambiguity in [0.3, 0.9) scales judgment noise and early-execution penalty.
	Ambiguity float64 `json:"ambiguity"`

	// ConditionChangeAt is the turn (2..5) from which execution is safe.
	ConditionChangeAt int `json:"condition_change_at"`

	// IrreversibleCost in [0.1, 0.5) is lost when executing too early.
	IrreversibleCost float64 `json:"irreversible_cost"`

	// GoalRevealedAt is the turn (3..7) from which the signal is clear.
	GoalRevealedAt int `json:"goal_revealed_at"`
}

// Task is one run's environment. It owns the PRNG of the run, seeded from the
// run id, so every agent faces the same task for a given seed.
type Task struct {
	State TaskState
	Turn  int

	r        *rand.Rand
	executed bool
	outcome  float64
}

// NewTask draws a task from seed. Seed 0 is a valid, fixed seed here.
func NewTask(seed int64) *Task {
	r := rand.New(rand.NewSource(seed))
	return &Task{
		State: TaskState{
			Ambiguity:         entropy.Between(r, 0.3, 0.9),
			ConditionChangeAt: entropy.IntBetween(r, 2, 5),
			IrreversibleCost:  entropy.Between(r, 0.1, 0.5),
			GoalRevealedAt:    entropy.IntBetween(r, 3, 7),
		},
		r: r,
	}
}

// Signal returns the judgment signal for the current turn, in [0, 1].
// Before the goal is revealed it carries extra noise proportional to the
// task's ambiguity.
func (t *Task) Signal() float64 {
	base := entropy.Normal(t.r, 0.5, 0.1)
	if t.Turn < t.State.GoalRevealedAt {
		base += entropy.Normal(t.r, 0, t.State.Ambiguity*0.3)
	}
	return stats.Clamp(base, 0, 1)
}

// Execute commits to quality. Only the first call has an effect; later calls
// return the committed outcome. Executing before the condition change pays
// the irreversible cost scaled by ambiguity, with wide noise.
func (t *Task) Execute(quality float64) float64 {
	if t.executed {
		return t.outcome
	}
	t.executed = true

	if t.Turn < t.State.ConditionChangeAt {
		penalty := t.State.IrreversibleCost * t.State.Ambiguity
		t.outcome = quality - penalty + entropy.Normal(t.r, 0, 0.2)
	} else {
		t.outcome = quality + entropy.Normal(t.r, 0, 0.05)
	}
	return t.outcome
}

// Executed reports whether the task has been committed.
func (t *Task) Executed() bool {
	return t.executed
}

// Advance moves to the next turn.
func (t *Task) Advance() {
	t.Turn++
}
