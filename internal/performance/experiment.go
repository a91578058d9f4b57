package performance

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

// Histogram range and resolution of the outcome distribution view.
const (
	HistogramLo   = -12.0
	HistogramHi   = 10.0
	HistogramBins = 49
)

// Config controls a comparison run.
type Config struct {
	Samples int
	Seed    int64
	Weights metrics.Weights

	// Profiles to compare, in report order. Nil means S1, S2, V7.
	Profiles []Profile

	// Observer, when set, sees every trial of every architecture.
	Observer func(arch models.Architecture, i int, tr models.Trial)
}

// DefaultConfig returns N=3000, seed 42, default weights.
func DefaultConfig() Config {
	return Config{
		Samples: constants.DefaultPerformanceSamples,
		Seed:    constants.DefaultSeed,
		Weights: metrics.DefaultWeights(),
	}
}

// SystemResult is the outcome of one architecture.
type SystemResult struct {
	Arch      models.Architecture `json:"-"`
	Trials    []models.Trial      `json:"-"`
	Outcomes  []float64           `json:"outcomes"`
	Metrics   metrics.Summary     `json:"metrics"`
	Histogram []stats.Bin         `json:"histogram"`
	CDF       []stats.Point       `json:"-"`
}

// Result is a full comparison.
type Result struct {
	Samples int
	Seed    int64
	Systems []SystemResult
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

// Summaries returns the metrics of every system in report order.
func (r *Result) Summaries() []metrics.Summary {
	out := make([]metrics.Summary, len(r.Systems))
	for i, s := range r.Systems {
		out[i] = s.Metrics
	}
	return out
}

// Run simulates every profile from one PRNG seeded once, in order.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = []Profile{S1(), S2(), V7()}
	}

	rng := entropy.New(cfg.Seed)
	res := &Result{Samples: cfg.Samples, Seed: cfg.Seed}

	for _, p := range profiles {
		var opts []simulation.Option[models.Trial]
		if cfg.Observer != nil {
			arch := p.Arch
			opts = append(opts, simulation.WithObserver(func(i int, tr models.Trial) {
				cfg.Observer(arch, i, tr)
			}))
		}

		trials, err := simulation.Run[models.Trial](ctx, p, cfg.Samples, rng, opts...)
		if err != nil {
			return nil, fmt.Errorf("simulate %s: %w", p.Arch, err)
		}

		outcomes := models.Outcomes(trials)
		summary, err := metrics.Summarize(p.Arch.String(), outcomes, cfg.Weights)
		if err != nil {
			return nil, err
		}
		hist, err := stats.Histogram(outcomes, HistogramLo, HistogramHi, HistogramBins)
		if err != nil {
			return nil, fmt.Errorf("histogram %s: %w", p.Arch, err)
		}

		res.Systems = append(res.Systems, SystemResult{
			Arch:      p.Arch,
			Trials:    trials,
			Outcomes:  outcomes,
			Metrics:   summary,
			Histogram: hist,
			CDF:       stats.ECDF(outcomes),
		})
	}

	return res, nil
}
