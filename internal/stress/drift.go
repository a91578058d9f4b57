package stress

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/stats"
)

// DriftSchedule makes structure erosion vary smoothly across a run instead
// of holding it constant: trial i of n sees
// Amplitude * noise(i/n * Frequency), with noise normalized to [0, 1).
type DriftSchedule struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
	Seed      int64   `json:"seed" yaml:"seed"`

	noise opensimplex.Noise
}

// NewDriftSchedule builds a schedule. Amplitude is clamped to [0, 1].
func NewDriftSchedule(amplitude, frequency float64, seed int64) *DriftSchedule {
	return &DriftSchedule{
		Amplitude: stats.Clamp(amplitude, 0, 1),
		Frequency: frequency,
		Seed:      seed,
		noise:     opensimplex.NewNormalized(seed),
	}
}

// ErosionAt returns the erosion rate of trial i out of n.
func (d *DriftSchedule) ErosionAt(i, n int) float64 {
	if n <= 0 || d.Amplitude == 0 {
		return 0
	}
	x := float64(i) / float64(n) * d.Frequency
	return stats.Clamp(d.Amplitude*d.noise.Eval2(x, 0), 0, 1)
}

// DriftingSystem runs an architecture whose structure erodes on a schedule.
// It implements simulation.IndexedGenerator.
type DriftingSystem struct {
	Arch     models.Architecture
	Twist    Twist
	Schedule *DriftSchedule
}

// SampleAt draws trial i of n.
func (s DriftingSystem) SampleAt(i, n int, r *rand.Rand) models.Trial {
	return sample(r, s.Arch, s.Twist, s.Schedule.ErosionAt(i, n))
}
