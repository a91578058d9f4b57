// Package config provides unified configuration loading for structsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
	"github.com/nvandessel/structsim/internal/logging"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory holding config.yaml.
const DirName = ".structsim"

// Config contains all structsim configuration settings.
type Config struct {
	// Seed seeds every experiment PRNG. 0 draws a fresh seed per run.
	Seed int64 `json:"seed" yaml:"seed"`

	// ResultsDir is where result documents are written. Supports ${VAR}.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// Scoring parameterizes effective performance.
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`

	Performance PerformanceConfig `json:"performance" yaml:"performance"`
	Stress      StressConfig      `json:"stress" yaml:"stress"`
	StateSpace  StateSpaceConfig  `json:"statespace" yaml:"statespace"`
	Judgment    JudgmentConfig    `json:"judgment" yaml:"judgment"`

	// History configures the SQLite run history.
	History HistoryConfig `json:"history" yaml:"history"`

	// MCP configures the MCP server.
	MCP MCPConfig `json:"mcp" yaml:"mcp"`

	// Logging contains settings for operational and trial logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ScoringConfig holds the effective performance weights.
type ScoringConfig struct {
	VarianceWeight    float64 `json:"variance_weight" yaml:"variance_weight"`
	CatastropheWeight float64 `json:"catastrophe_weight" yaml:"catastrophe_weight"`
	CatastropheScale  float64 `json:"catastrophe_scale" yaml:"catastrophe_scale"`
}

// PerformanceConfig configures the S1/S2/V7 comparison.
type PerformanceConfig struct {
	Samples int `json:"samples" yaml:"samples"`

	// ArrowExport additionally writes every trial as an Arrow IPC file.
	ArrowExport bool `json:"arrow_export" yaml:"arrow_export"`
}

// StressConfig configures the adversarial stress suite.
type StressConfig struct {
	Samples       int         `json:"samples" yaml:"samples"`
	ErosionLevels []float64   `json:"erosion_levels" yaml:"erosion_levels"`
	Drift         DriftConfig `json:"drift" yaml:"drift"`
}

// DriftConfig configures the drifting-erosion row of the stress suite.
type DriftConfig struct {
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
}

// StateSpaceConfig configures the five-axis state sampling.
type StateSpaceConfig struct {
	Samples int `json:"samples" yaml:"samples"`
}

// JudgmentConfig configures the judgment-versus-execution experiment.
type JudgmentConfig struct {
	Runs     int `json:"runs" yaml:"runs"`
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// BaseSeed is the task seed of the first run; runs use consecutive seeds.
	BaseSeed int64 `json:"base_seed" yaml:"base_seed"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path of the SQLite file. Empty means <results_dir>/history.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// MCPConfig bounds work requested through MCP tools.
type MCPConfig struct {
	// MaxSamples caps the sample count a tool call may request.
	MaxSamples int `json:"max_samples" yaml:"max_samples"`

	// ToolTimeout bounds a single tool call.
	ToolTimeout time.Duration `json:"tool_timeout" yaml:"tool_timeout"`
}

// LoggingConfig configures structsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables trial logging of catastrophes to <results_dir>/trials.jsonl.
	// "trace" additionally logs every trial.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with the experiments' published parameters.
func Default() *Config {
	return &Config{
		Seed:       constants.DefaultSeed,
		ResultsDir: constants.DefaultResultsDir,
		Scoring: ScoringConfig{
			VarianceWeight:    constants.DefaultVarianceWeight,
			CatastropheWeight: constants.DefaultCatastropheWeight,
			CatastropheScale:  constants.DefaultCatastropheScale,
		},
		Performance: PerformanceConfig{
			Samples: constants.DefaultPerformanceSamples,
		},
		Stress: StressConfig{
			Samples:       constants.DefaultStressSamples,
			ErosionLevels: append([]float64(nil), constants.DefaultErosionLevels...),
			Drift: DriftConfig{
				Amplitude: 0.3,
				Frequency: 4,
			},
		},
		StateSpace: StateSpaceConfig{
			Samples: constants.DefaultStateSpaceSamples,
		},
		Judgment: JudgmentConfig{
			Runs:     constants.DefaultJudgmentRuns,
			MaxTurns: constants.DefaultJudgmentMaxTurns,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		MCP: MCPConfig{
			MaxSamples:  50000,
			ToolTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from path, or from ~/.structsim/config.yaml when
// path is empty, then applies environment variables.
// Order: defaults -> config file -> environment variables
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(homeDir, DirName, "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.ResultsDir = expandEnvVars(config.ResultsDir)
	config.History.Path = expandEnvVars(config.History.Path)

	return config, nil
}

// HistoryPath returns the resolved history database path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.ResultsDir, "history.db")
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.ResultsDir == "" {
		return fmt.Errorf("results_dir must not be empty")
	}

	if c.Scoring.VarianceWeight < 0 || c.Scoring.CatastropheWeight < 0 || c.Scoring.CatastropheScale < 0 {
		return fmt.Errorf("scoring weights must be non-negative, got %+v", c.Scoring)
	}

	samples := map[string]int{
		"performance.samples": c.Performance.Samples,
		"stress.samples":      c.Stress.Samples,
		"statespace.samples":  c.StateSpace.Samples,
		"judgment.runs":       c.Judgment.Runs,
		"judgment.max_turns":  c.Judgment.MaxTurns,
		"mcp.max_samples":     c.MCP.MaxSamples,
	}
	for name, n := range samples {
		if n <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, n)
		}
	}

	for _, e := range c.Stress.ErosionLevels {
		if e < 0 || e > 1 {
			return fmt.Errorf("erosion level must be between 0 and 1, got %f", e)
		}
	}

	if c.Stress.Drift.Enabled {
		if c.Stress.Drift.Amplitude < 0 || c.Stress.Drift.Amplitude > 1 {
			return fmt.Errorf("drift amplitude must be between 0 and 1, got %f", c.Stress.Drift.Amplitude)
		}
		if c.Stress.Drift.Frequency <= 0 {
			return fmt.Errorf("drift frequency must be positive, got %f", c.Stress.Drift.Frequency)
		}
	}

	if c.MCP.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout must be non-negative, got %v", c.MCP.ToolTimeout)
	}

	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("STRUCTSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = n
		}
	}

	if v := os.Getenv("STRUCTSIM_RESULTS_DIR"); v != "" {
		config.ResultsDir = v
	}

	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setInt("STRUCTSIM_PERFORMANCE_SAMPLES", &config.Performance.Samples)
	setInt("STRUCTSIM_STRESS_SAMPLES", &config.Stress.Samples)
	setInt("STRUCTSIM_STATESPACE_SAMPLES", &config.StateSpace.Samples)
	setInt("STRUCTSIM_JUDGMENT_RUNS", &config.Judgment.Runs)

	if v := os.Getenv("STRUCTSIM_ARROW_EXPORT"); v != "" {
		config.Performance.ArrowExport = v == "true" || v == "1"
	}

	if v := os.Getenv("STRUCTSIM_HISTORY_ENABLED"); v != "" {
		config.History.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("STRUCTSIM_HISTORY_PATH"); v != "" {
		config.History.Path = v
	}

	if v := os.Getenv("STRUCTSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
