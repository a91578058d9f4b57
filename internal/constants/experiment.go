package constants

// Experiment identifies one of the simulation families.
type Experiment string

const (
	// ExperimentPerformance compares S1, S2 and V7 outcome distributions.
	ExperimentPerformance Experiment = "performance"

	// ExperimentStress replays the comparison under adversarial twists.
	ExperimentStress Experiment = "stress"

	// ExperimentStateSpace samples the five-axis freedom/cost state space.
	ExperimentStateSpace Experiment = "statespace"

	// ExperimentJudgment runs the turn-based judgment vs execution experiment.
	ExperimentJudgment Experiment = "judgment"
)

// Experiments lists every experiment in the order `all` runs them.
var Experiments = []Experiment{
	ExperimentPerformance,
	ExperimentStress,
	ExperimentStateSpace,
	ExperimentJudgment,
}

// Valid returns true if the experiment is a recognized value.
func (e Experiment) Valid() bool {
	switch e {
	case ExperimentPerformance, ExperimentStress, ExperimentStateSpace, ExperimentJudgment:
		return true
	}
	return false
}

// String returns the string representation of the experiment.
func (e Experiment) String() string {
	return string(e)
}
