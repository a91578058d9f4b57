// Package stress replays the architecture comparison under adversarial
// twists. The structured architecture is not robust because it adapts to
// stress; it is robust because stress has nowhere to propagate. Catastrophes
// only reach it when the structure itself erodes.
package stress

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/stats"
)

// Twist perturbs the outcome model.
type Twist struct {
	// CatPenalty replaces the catastrophic outcome (default -10).
	CatPenalty float64 `json:"cat_penalty" yaml:"cat_penalty"`

	// FreedomBoost is added to every freedom draw, capped at 1.
	FreedomBoost float64 `json:"freedom_boost" yaml:"freedom_boost"`

	// StructureErosion is the chance the structured cost guard fails for a
	// trial. It also enables a catastrophic branch for eroded high-risk states.
	StructureErosion float64 `json:"structure_erosion" yaml:"structure_erosion"`

	// ExecSpike multiplies execution intensity: catastrophe probability and
	// danger-zone shock width.
	ExecSpike float64 `json:"exec_spike" yaml:"exec_spike"`

	// ObsNoise degrades observation: it lowers latent quality by up to
	// ObsNoise and lowers the structured floor by ObsNoise.
	ObsNoise float64 `json:"obs_noise" yaml:"obs_noise"`
}

// Baseline returns the unperturbed twist.
func Baseline() Twist {
	return Twist{
		CatPenalty: constants.CatastrophicPenalty,
		ExecSpike:  1.0,
	}
}

// Validate checks that the twist stays inside the model's domain.
func (tw Twist) Validate() error {
	if tw.CatPenalty >= 0 {
		return fmt.Errorf("cat_penalty must be negative, got %g", tw.CatPenalty)
	}
	if tw.FreedomBoost < 0 || tw.FreedomBoost > 1 {
		return fmt.Errorf("freedom_boost must be in [0, 1], got %g", tw.FreedomBoost)
	}
	if tw.StructureErosion < 0 || tw.StructureErosion > 1 {
		return fmt.Errorf("structure_erosion must be in [0, 1], got %g", tw.StructureErosion)
	}
	if tw.ExecSpike <= 0 {
		return fmt.Errorf("exec_spike must be positive, got %g", tw.ExecSpike)
	}
	if tw.ObsNoise < 0 {
		return fmt.Errorf("obs_noise must be non-negative, got %g", tw.ObsNoise)
	}
	return nil
}

// System is an architecture running under a twist. It implements
// simulation.Generator.
type System struct {
	Arch  models.Architecture
	Twist Twist
}

// Sample draws one trial.
func (s System) Sample(r *rand.Rand) models.Trial {
	return sample(r, s.Arch, s.Twist, s.Twist.StructureErosion)
}

// sample draws a trial with an explicit erosion rate so drifting schedules
// can vary it per trial.
func sample(r *rand.Rand, arch models.Architecture, tw Twist, erosion float64) models.Trial {
	latent := entropy.Normal(r, constants.LatentMu, constants.LatentSigma)
	freedom := math.Min(1.0, entropy.Uniform(r)+tw.FreedomBoost)

	if arch.Structured() {
		return sampleStructured(r, tw, erosion, latent, freedom)
	}
	return sampleUnstructured(r, arch, tw, latent, freedom)
}

func sampleStructured(r *rand.Rand, tw Twist, erosion, latent, freedom float64) models.Trial {
	var cost float64
	if entropy.Chance(r, erosion) {
		if freedom > constants.FreedomSplit {
			cost = entropy.Uniform(r) * 0.6
		} else {
			cost = entropy.Uniform(r) * 0.4
		}
	} else {
		if freedom > constants.FreedomSplit {
			cost = entropy.Uniform(r) * 0.1
		} else {
			cost = entropy.Uniform(r) * 0.5
		}
	}

	latent -= tw.ObsNoise * entropy.Uniform(r)
	tr := models.Trial{Freedom: freedom, Cost: cost, Latent: latent}

	if erosion > 0 && freedom > 0.6 && cost > 0.4 {
		if entropy.Chance(r, erosion*0.5) {
			tr.Outcome = tw.CatPenalty
			tr.Catastrophic = true
			return tr
		}
	}

	floor := constants.StructuredFloor - tw.ObsNoise
	tr.Outcome = stats.Clamp(latent+entropy.Normal(r, 0, 0.5), floor, constants.OutcomeCeiling)
	return tr
}

func sampleUnstructured(r *rand.Rand, arch models.Architecture, tw Twist, latent, freedom float64) models.Trial {
	cost := entropy.Uniform(r)

	threshold, catProb := 0.4, 0.08
	if arch == models.ArchS1 {
		threshold, catProb = 0.5, 0.12
	}
	catProb *= tw.ExecSpike

	tr := models.Trial{Freedom: freedom, Cost: cost, Latent: latent}

	if freedom > threshold && cost > threshold {
		if entropy.Chance(r, catProb) {
			tr.Outcome = tw.CatPenalty
			tr.Catastrophic = true
			return tr
		}
		latent += entropy.Normal(r, 0, 1.5*tw.ExecSpike)
	}

	tr.Outcome = stats.Clamp(latent+entropy.Normal(r, 0, 1.0), constants.OutcomeFloor, constants.OutcomeCeiling)
	return tr
}
