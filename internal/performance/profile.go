// Package performance implements the S1 vs S2 vs V7 comparison: the
// structured architecture does not outperform by being smarter, it
// outperforms by eliminating bad outcomes.
package performance

import (
	"fmt"
	"math/rand"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/stats"
)

// Profile parameterizes the outcome model of one architecture.
type Profile struct {
	Arch models.Architecture

	// Cost shaping. Unguarded profiles draw cost = U*CostScale + CostOffset.
	// Guarded profiles bound cost by freedom: high-freedom states draw
	// U*HighFreedomCostScale, low-freedom states U*LowFreedomCostScale.
	Guarded              bool
	CostScale            float64
	CostOffset           float64
	HighFreedomCostScale float64
	LowFreedomCostScale  float64

	// Danger zone: freedom > DangerFreedom and cost > DangerCost.
	DangerFreedom float64
	DangerCost    float64

	// CatastropheProb is the chance a danger-zone trial fails irreversibly.
	// Zero disables the danger-zone branch entirely.
	CatastropheProb float64

	// ShockSigma widens latent quality for danger-zone trials that survive.
	ShockSigma float64

	// NoiseSigma is the execution noise added to every surviving trial.
	NoiseSigma float64

	Floor   float64
	Ceiling float64
	Penalty float64
}

// S1 couples judgment and execution.
func S1() Profile {
	return Profile{
		Arch:            models.ArchS1,
		CostScale:       1,
		DangerFreedom:   0.5,
		DangerCost:      0.5,
		CatastropheProb: 0.12,
		ShockSigma:      1.5,
		NoiseSigma:      1.0,
		Floor:           constants.OutcomeFloor,
		Ceiling:         constants.OutcomeCeiling,
		Penalty:         constants.CatastrophicPenalty,
	}
}

// S2 delays execution behind a weak structure.
func S2() Profile {
	return Profile{
		Arch:            models.ArchS2,
		CostScale:       0.8,
		CostOffset:      0.1,
		DangerFreedom:   0.5,
		DangerCost:      0.4,
		CatastropheProb: 0.08,
		ShockSigma:      1.0,
		NoiseSigma:      0.8,
		Floor:           constants.OutcomeFloor,
		Ceiling:         constants.OutcomeCeiling,
		Penalty:         constants.CatastrophicPenalty,
	}
}

// V7 routes every decision through state, structure, execute. High freedom
// is only granted where failure is cheap.
func V7() Profile {
	return Profile{
		Arch:                 models.ArchV7,
		Guarded:              true,
		HighFreedomCostScale: 0.1,
		LowFreedomCostScale:  0.5,
		NoiseSigma:           0.5,
		Floor:                constants.StructuredFloor,
		Ceiling:              constants.OutcomeCeiling,
		Penalty:              constants.CatastrophicPenalty,
	}
}

// ProfileFor returns the built-in profile of arch.
func ProfileFor(arch models.Architecture) (Profile, error) {
	switch arch {
	case models.ArchS1:
		return S1(), nil
	case models.ArchS2:
		return S2(), nil
	case models.ArchV7:
		return V7(), nil
	}
	return Profile{}, fmt.Errorf("no performance profile for architecture %q", arch)
}

// Sample draws one trial. Draw order: latent, freedom, cost, then the
// danger-zone branch, then execution noise.
func (p Profile) Sample(r *rand.Rand) models.Trial {
	latent := entropy.Normal(r, constants.LatentMu, constants.LatentSigma)
	freedom := entropy.Uniform(r)
	cost := p.cost(r, freedom)

	tr := models.Trial{Freedom: freedom, Cost: cost, Latent: latent}

	if p.CatastropheProb > 0 && freedom > p.DangerFreedom && cost > p.DangerCost {
		if entropy.Chance(r, p.CatastropheProb) {
			tr.Outcome = p.Penalty
			tr.Catastrophic = true
			return tr
		}
		latent += entropy.Normal(r, 0, p.ShockSigma)
	}

	tr.Outcome = stats.Clamp(latent+entropy.Normal(r, 0, p.NoiseSigma), p.Floor, p.Ceiling)
	return tr
}

func (p Profile) cost(r *rand.Rand, freedom float64) float64 {
	if !p.Guarded {
		return entropy.Uniform(r)*p.CostScale + p.CostOffset
	}
	if freedom > constants.FreedomSplit {
		return entropy.Uniform(r) * p.HighFreedomCostScale
	}
	return entropy.Uniform(r) * p.LowFreedomCostScale
}
