package statespace

import (
	"context"
	"fmt"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/simulation"
	"github.com/nvandessel/structsim/internal/stats"
)

// DangerFreedom and DangerCost bound the danger zone used for occupancy.
const (
	DangerFreedom = 0.5
	DangerCost    = 0.5
)

// Config controls a state-space run.
type Config struct {
	Samples  int
	Seed     int64
	Observer func(s models.StateSample)
}

// DefaultConfig returns N=2000 per system and seed 42.
func DefaultConfig() Config {
	return Config{
		Samples: constants.DefaultStateSpaceSamples,
		Seed:    constants.DefaultSeed,
	}
}

// SystemResult aggregates the samples of one architecture.
type SystemResult struct {
	Arch             models.Architecture    `json:"-"`
	System           string                 `json:"system"`
	Samples          []models.StateSample   `json:"-"`
	Counts           metrics.CategoryCounts `json:"counts"`
	CatastrophicRate float64                `json:"catastrophic_rate"`

	// DangerOccupancy is the share of samples with freedom > 0.5 and
	// cost > 0.5, as a percentage.
	DangerOccupancy float64 `json:"danger_occupancy"`
}

// Result is a full state-space run.
type Result struct {
	Samples int            `json:"n_samples"`
	Seed    int64          `json:"seed"`
	Systems []SystemResult `json:"systems"`
}

// All returns every sample in S1, S2, V7 order, the layout of the result file.
func (r *Result) All() []models.StateSample {
	var out []models.StateSample
	for _, s := range r.Systems {
		out = append(out, s.Samples...)
	}
	return out
}

// System returns the result of arch.
func (r *Result) System(arch models.Architecture) (SystemResult, bool) {
	for _, s := range r.Systems {
		if s.Arch == arch {
			return s, true
		}
	}
	return SystemResult{}, false
}

// Run samples every architecture from one PRNG seeded once.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	rng := entropy.New(cfg.Seed)
	res := &Result{Samples: cfg.Samples, Seed: cfg.Seed}

	for _, arch := range models.Architectures {
		var opts []simulation.Option[models.StateSample]
		if cfg.Observer != nil {
			opts = append(opts, simulation.WithObserver(func(_ int, s models.StateSample) {
				cfg.Observer(s)
			}))
		}

		samples, err := simulation.RunIndexed[models.StateSample](ctx, Generator{Arch: arch}, cfg.Samples, rng, opts...)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", arch, err)
		}

		counts := metrics.CountCategories(samples)
		res.Systems = append(res.Systems, SystemResult{
			Arch:             arch,
			System:           SystemName(arch),
			Samples:          samples,
			Counts:           counts,
			CatastrophicRate: counts.CatastrophicRate(),
			DangerOccupancy:  Occupancy(samples),
		})
	}
	return res, nil
}

// Occupancy returns the percentage of samples inside the danger zone,
// rounded to one decimal.
func Occupancy(samples []models.StateSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	n := 0
	for _, s := range samples {
		if s.Freedom > DangerFreedom && s.FailureCost > DangerCost {
			n++
		}
	}
	return stats.Round(float64(n)/float64(len(samples))*100, 1)
}
