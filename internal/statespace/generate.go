// Package statespace samples the five-axis state space (freedom, failure
// cost, reversibility, time model, information gain) that each architecture
// occupies, with a categorical outcome per sample.
//
// The unstructured systems roam the whole plane and meet catastrophes in the
// high-freedom, high-cost corner. The structured system never reaches that
// corner: when freedom is high it only acts on cheap, reversible steps.
package statespace

import (
	"math/rand"

	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/models"
)

// SystemName returns the label stored on each sample of arch.
func SystemName(arch models.Architecture) string {
	if arch.Structured() {
		return "S3_V7"
	}
	return arch.String()
}

// Generator draws state samples for one architecture. It implements
// simulation.IndexedGenerator so each sample records its iteration.
type Generator struct {
	Arch models.Architecture
}

// SampleAt draws sample i.
func (g Generator) SampleAt(i, _ int, r *rand.Rand) models.StateSample {
	var s models.StateSample
	switch g.Arch {
	case models.ArchS1:
		s = sampleS1(r)
	case models.ArchS2:
		s = sampleS2(r)
	default:
		s = sampleV7(r)
	}
	s.System = SystemName(g.Arch)
	s.Iteration = i
	return s
}

var timeModels = []models.TimeModel{models.TimeModelTau, models.TimeModelWall}

// S1 couples judgment and execution.
func sampleS1(r *rand.Rand) models.StateSample {
	s := models.StateSample{
		Freedom:       entropy.Uniform(r),
		FailureCost:   entropy.Uniform(r),
		Reversibility: entropy.Uniform(r),
		TimeModel:     entropy.Choice(r, timeModels),
		InfoGain:      entropy.Uniform(r),
	}
	s.Outcome = dangerOutcome(r, s.Freedom > 0.6 && s.FailureCost > 0.5, 0.15, 0.4, 0.7)
	return s
}

// S2 executes immediately after judging.
func sampleS2(r *rand.Rand) models.StateSample {
	s := models.StateSample{
		Freedom:       entropy.Uniform(r),
		FailureCost:   entropy.Uniform(r)*0.8 + 0.1,
		Reversibility: entropy.Uniform(r) * 0.6,
		TimeModel:     models.TimeModelWall,
		InfoGain:      entropy.Uniform(r) * 0.5,
	}
	s.Outcome = dangerOutcome(r, s.Freedom > 0.5 && s.FailureCost > 0.4, 0.10, 0.35, 0.75)
	return s
}

// V7 observes, structures, then executes.
func sampleV7(r *rand.Rand) models.StateSample {
	s := models.StateSample{Freedom: entropy.Uniform(r)}
	if s.Freedom > 0.5 {
		s.FailureCost = entropy.Uniform(r) * 0.1
		s.Reversibility = 0.8 + entropy.Uniform(r)*0.2
		s.TimeModel = models.TimeModelTau
	} else {
		s.FailureCost = entropy.Uniform(r) * 0.6
		s.Reversibility = 0.3 + entropy.Uniform(r)*0.4
		s.TimeModel = models.TimeModelWall
	}
	s.InfoGain = 0.4 + entropy.Uniform(r)*0.5

	s.Outcome = models.CategoryFail
	if entropy.Chance(r, 0.85) {
		s.Outcome = models.CategorySuccess
	}
	return s
}

// dangerOutcome rolls the outcome of an unstructured sample. Inside the
// danger zone a catastrophe roll comes first, then an independent fail roll.
// Outside it the sample succeeds with probability success.
func dangerOutcome(r *rand.Rand, danger bool, catastrophe, fail, success float64) models.Category {
	if danger {
		switch {
		case entropy.Chance(r, catastrophe):
			return models.CategoryCatastrophic
		case entropy.Chance(r, fail):
			return models.CategoryFail
		default:
			return models.CategorySuccess
		}
	}
	if entropy.Chance(r, success) {
		return models.CategorySuccess
	}
	return models.CategoryFail
}
