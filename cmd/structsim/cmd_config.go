package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/structsim/internal/config"
	"github.com/nvandessel/structsim/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage structsim configuration",
		Long: `View and modify structsim configuration settings.

Configuration is stored in ~/.structsim/config.yaml unless --config names
another file. STRUCTSIM_* environment variables override the file.

Examples:
  structsim config list                          # Show effective settings
  structsim config get stress.samples            # Get a specific setting
  structsim config set performance.samples 10000 # Set a setting
  structsim config set stress.erosion_levels 0,0.2,0.4`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

// configKeys lists every key understood by get and set, in display order.
var configKeys = []string{
	"seed",
	"results_dir",
	"scoring.variance_weight",
	"scoring.catastrophe_weight",
	"scoring.catastrophe_scale",
	"performance.samples",
	"performance.arrow_export",
	"stress.samples",
	"stress.erosion_levels",
	"stress.drift.enabled",
	"stress.drift.amplitude",
	"stress.drift.frequency",
	"statespace.samples",
	"judgment.runs",
	"judgment.max_turns",
	"judgment.base_seed",
	"history.enabled",
	"history.path",
	"mcp.max_samples",
	"mcp.tool_timeout",
	"logging.level",
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			path, _ := configPath(cmd)
			fmt.Fprintf(out, "Configuration (%s):\n\n", path)
			for _, key := range configKeys {
				value, _ := getConfigValue(cfg, key)
				fmt.Fprintf(out, "  %-28s %v\n", key+":", value)
			}
			fmt.Fprintf(out, "\n  %-28s %s\n", "(history database)", cfg.HistoryPath())
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				}
				return nil
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			} else {
				fmt.Fprintf(out, "%s = %v\n", key, value)
			}

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			value := args[1]

			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			// Edit the file alone so environment overrides are not persisted.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				cfg, err = config.LoadFromFile(path)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if err := setConfigValue(cfg, key, value); err != nil {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": err.Error(),
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
				return nil
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}

			if err := saveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
					"path":   path,
				})
			} else {
				fmt.Fprintf(out, "Set %s = %s\n", key, value)
			}

			return nil
		},
	}
}

// configPath returns the --config file, or ~/.structsim/config.yaml.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, config.DirName, "config.yaml"), nil
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (interface{}, bool) {
	switch key {
	case "seed":
		return cfg.Seed, true
	case "results_dir":
		return cfg.ResultsDir, true
	case "scoring.variance_weight":
		return cfg.Scoring.VarianceWeight, true
	case "scoring.catastrophe_weight":
		return cfg.Scoring.CatastropheWeight, true
	case "scoring.catastrophe_scale":
		return cfg.Scoring.CatastropheScale, true
	case "performance.samples":
		return cfg.Performance.Samples, true
	case "performance.arrow_export":
		return cfg.Performance.ArrowExport, true
	case "stress.samples":
		return cfg.Stress.Samples, true
	case "stress.erosion_levels":
		return formatFloats(cfg.Stress.ErosionLevels), true
	case "stress.drift.enabled":
		return cfg.Stress.Drift.Enabled, true
	case "stress.drift.amplitude":
		return cfg.Stress.Drift.Amplitude, true
	case "stress.drift.frequency":
		return cfg.Stress.Drift.Frequency, true
	case "statespace.samples":
		return cfg.StateSpace.Samples, true
	case "judgment.runs":
		return cfg.Judgment.Runs, true
	case "judgment.max_turns":
		return cfg.Judgment.MaxTurns, true
	case "judgment.base_seed":
		return cfg.Judgment.BaseSeed, true
	case "history.enabled":
		return cfg.History.Enabled, true
	case "history.path":
		return valueOrDefault(cfg.History.Path, "(default)"), true
	case "mcp.max_samples":
		return cfg.MCP.MaxSamples, true
	case "mcp.tool_timeout":
		return cfg.MCP.ToolTimeout.String(), true
	case "logging.level":
		return valueOrDefault(cfg.Logging.Level, "info"), true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "seed":
		return parseInt64(value, &cfg.Seed)
	case "results_dir":
		cfg.ResultsDir = value
	case "scoring.variance_weight":
		return parseFloat(value, &cfg.Scoring.VarianceWeight)
	case "scoring.catastrophe_weight":
		return parseFloat(value, &cfg.Scoring.CatastropheWeight)
	case "scoring.catastrophe_scale":
		return parseFloat(value, &cfg.Scoring.CatastropheScale)
	case "performance.samples":
		return parseInt(value, &cfg.Performance.Samples)
	case "performance.arrow_export":
		cfg.Performance.ArrowExport = parseBool(value)
	case "stress.samples":
		return parseInt(value, &cfg.Stress.Samples)
	case "stress.erosion_levels":
		levels, err := parseFloats(value)
		if err != nil {
			return err
		}
		cfg.Stress.ErosionLevels = levels
	case "stress.drift.enabled":
		cfg.Stress.Drift.Enabled = parseBool(value)
	case "stress.drift.amplitude":
		return parseFloat(value, &cfg.Stress.Drift.Amplitude)
	case "stress.drift.frequency":
		return parseFloat(value, &cfg.Stress.Drift.Frequency)
	case "statespace.samples":
		return parseInt(value, &cfg.StateSpace.Samples)
	case "judgment.runs":
		return parseInt(value, &cfg.Judgment.Runs)
	case "judgment.max_turns":
		return parseInt(value, &cfg.Judgment.MaxTurns)
	case "judgment.base_seed":
		return parseInt64(value, &cfg.Judgment.BaseSeed)
	case "history.enabled":
		cfg.History.Enabled = parseBool(value)
	case "history.path":
		cfg.History.Path = value
	case "mcp.max_samples":
		return parseInt(value, &cfg.MCP.MaxSamples)
	case "mcp.tool_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.MCP.ToolTimeout = d
	case "logging.level":
		if !logging.ValidLevel(value) {
			return fmt.Errorf("invalid log level: %s (valid: info, debug, trace)", value)
		}
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// saveConfig writes the configuration to path.
func saveConfig(cfg *config.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func parseInt(value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	*dst = n
	return nil
}

func parseInt64(value string, dst *int64) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	*dst = n
	return nil
}

func parseFloat(value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %s", value)
	}
	*dst = f
	return nil
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}

func parseFloats(value string) ([]float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number in list: %s", p)
		}
		out = append(out, f)
	}
	return out, nil
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
