package config

import (
	"encoding/json"

	"github.com/nvandessel/structsim/internal/entropy"
	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/performance"
	"github.com/nvandessel/structsim/internal/statespace"
	"github.com/nvandessel/structsim/internal/stress"
)

// ResolveSeed replaces a zero Seed with a crypto-derived one so that the
// seed recorded with results reproduces them.
func (c *Config) ResolveSeed() int64 {
	if c.Seed == 0 {
		c.Seed = entropy.CryptoSeed()
	}
	return c.Seed
}

// Weights returns the effective performance weights.
func (c *Config) Weights() metrics.Weights {
	return metrics.Weights{
		VarianceWeight:    c.Scoring.VarianceWeight,
		CatastropheWeight: c.Scoring.CatastropheWeight,
		CatastropheScale:  c.Scoring.CatastropheScale,
	}
}

// ForPerformance returns the comparison settings.
func (c *Config) ForPerformance() performance.Config {
	cfg := performance.DefaultConfig()
	cfg.Samples = c.Performance.Samples
	cfg.Seed = c.Seed
	cfg.Weights = c.Weights()
	return cfg
}

// ForStress returns the suite settings. The drift schedule is seeded with
// Seed so a drifting run reproduces with the rest of the suite.
func (c *Config) ForStress() stress.Config {
	cfg := stress.DefaultConfig()
	cfg.Samples = c.Stress.Samples
	cfg.Seed = c.Seed
	cfg.Weights = c.Weights()
	cfg.ErosionLevels = append([]float64(nil), c.Stress.ErosionLevels...)
	if c.Stress.Drift.Enabled {
		cfg.Drift = stress.NewDriftSchedule(c.Stress.Drift.Amplitude, c.Stress.Drift.Frequency, c.Seed)
	}
	return cfg
}

// ForStateSpace returns the state-space settings.
func (c *Config) ForStateSpace() statespace.Config {
	cfg := statespace.DefaultConfig()
	cfg.Samples = c.StateSpace.Samples
	cfg.Seed = c.Seed
	return cfg
}

// ForJudgment returns the judgment settings. Task seeds come from BaseSeed,
// not Seed.
func (c *Config) ForJudgment() judgment.Config {
	cfg := judgment.DefaultConfig()
	cfg.Runs = c.Judgment.Runs
	cfg.MaxTurns = c.Judgment.MaxTurns
	cfg.BaseSeed = c.Judgment.BaseSeed
	return cfg
}

// Snapshot returns the configuration as compact JSON, the form recorded with
// each history run.
func (c *Config) Snapshot() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}
