// Package constants provides named constants used throughout structsim.
// This centralizes the model parameters of the experiments so that the
// generators, the CLI defaults and the tests agree on one set of numbers.
package constants

// Latent quality model shared by the outcome generators.
const (
	// LatentMu is the mean of the latent task quality distribution.
	LatentMu = 6.0

	// LatentSigma is the standard deviation of the latent task quality distribution.
	LatentSigma = 1.5

	// OutcomeCeiling is the best outcome any trial can report.
	OutcomeCeiling = 10.0

	// OutcomeFloor is the worst non-catastrophic outcome for unstructured systems.
	OutcomeFloor = 0.0

	// StructuredFloor is the worst non-catastrophic outcome for the structured system.
	// The structure guarantees a recoverable minimum.
	StructuredFloor = 2.0

	// CatastrophicPenalty is the outcome recorded for an irreversible failure.
	// Any negative outcome counts as catastrophic.
	CatastrophicPenalty = -10.0

	// FreedomSplit separates low-freedom from high-freedom states.
	FreedomSplit = 0.5
)

// Effective performance weights.
// effective = mean - VarianceWeight*std - CatastropheWeight*rate*CatastropheScale
const (
	// DefaultVarianceWeight (lambda) penalizes outcome spread.
	DefaultVarianceWeight = 0.5

	// DefaultCatastropheWeight (mu) penalizes the catastrophic fraction.
	DefaultCatastropheWeight = 2.0

	// DefaultCatastropheScale converts the catastrophic fraction onto the outcome scale.
	DefaultCatastropheScale = 10.0
)

// Sample counts and seeds used when nothing is configured.
const (
	DefaultSeed int64 = 42

	DefaultPerformanceSamples = 3000
	DefaultStressSamples      = 2000
	DefaultStateSpaceSamples  = 2000
	DefaultJudgmentRuns       = 100
	DefaultJudgmentMaxTurns   = 10
)

// Default result file names, relative to the results directory.
const (
	PerformanceResultFile = "performance_comparison.json"
	PerformanceArrowFile  = "performance_trials.arrow"
	StressResultFile      = "adversarial_stress_results.json"
	StateSpaceResultFile  = "macro_micro_states.json"
	JudgmentResultFile    = "jve_results.json"
	TrialLogFile          = "trials.jsonl"
)

// DefaultResultsDir is the directory result documents are written to.
const DefaultResultsDir = "results"

// DefaultErosionLevels is the structure erosion sweep of the stress suite.
var DefaultErosionLevels = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}
