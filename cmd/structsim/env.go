package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nvandessel/structsim/internal/config"
	"github.com/nvandessel/structsim/internal/logging"
	"github.com/nvandessel/structsim/internal/report"
	"github.com/nvandessel/structsim/internal/store"
	"github.com/spf13/cobra"
)

// runEnv carries what every experiment command needs: resolved settings,
// loggers, the optional run history and the output mode.
type runEnv struct {
	settings *config.Config
	logger   *slog.Logger
	trials   *logging.TrialLogger
	history  *store.History
	printer  *report.Printer
	out      io.Writer
	jsonOut  bool
}

// loadSettings loads the config file and applies the global flag overrides.
// A zero seed is resolved so that results record the seed actually used.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("results-dir"); dir != "" {
		settings.ResultsDir = dir
	}
	if cmd.Flags().Changed("seed") {
		settings.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		settings.Logging.Level = level
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}

// openEnv prepares an experiment run. Callers must Close the result.
func openEnv(cmd *cobra.Command) (*runEnv, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return newRunEnv(cmd, settings)
}

func newRunEnv(cmd *cobra.Command, settings *config.Config) (*runEnv, error) {
	settings.ResolveSeed()
	jsonOut, _ := cmd.Flags().GetBool("json")

	env := &runEnv{
		settings: settings,
		logger:   logging.NewLogger(settings.Logging.Level, cmd.ErrOrStderr()),
		trials:   logging.NewTrialLogger(settings.ResultsDir, settings.Logging.Level),
		printer:  report.NewPrinter(cmd.OutOrStdout()),
		out:      cmd.OutOrStdout(),
		jsonOut:  jsonOut,
	}

	if settings.History.Enabled {
		h, err := store.Open(settings.HistoryPath())
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		env.history = h
	}

	return env, nil
}

// Close releases the history database and trial log.
func (e *runEnv) Close() {
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			e.logger.Warn("failed to close run history", "error", err)
		}
		e.history = nil
	}
	e.trials.Close()
}

// write stores a result document and reports it in text mode.
func (e *runEnv) write(name string, doc any) (string, error) {
	path, size, err := report.WriteJSON(e.settings.ResultsDir, name, doc)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	e.logger.Debug("result written", "path", path, "bytes", size)
	if !e.jsonOut {
		e.printer.Written(path, size)
	}
	return path, nil
}

// record saves run in the history when it is enabled and returns its id.
// A failed save is logged, not returned: the result file already exists.
func (e *runEnv) record(ctx context.Context, run *store.Run, resultPath string, start time.Time) string {
	e.trials.Log(map[string]any{
		"event":       "run_complete",
		"experiment":  run.Experiment,
		"seed":        run.Seed,
		"samples":     run.Samples,
		"result_path": resultPath,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if e.history == nil {
		return ""
	}

	run.Config = e.settings.Snapshot()
	run.ResultPath = resultPath
	run.StartedAt = start
	run.Duration = time.Since(start)
	if err := e.history.SaveRun(ctx, run); err != nil {
		e.logger.Warn("failed to record run", "experiment", run.Experiment, "error", err)
		return ""
	}
	e.logger.Debug("run recorded", "id", run.ID, "experiment", run.Experiment)
	return run.ID
}

// emit writes v as JSON in JSON mode.
func (e *runEnv) emit(v any) error {
	return json.NewEncoder(e.out).Encode(v)
}

// recorded prints the run id in text mode.
func (e *runEnv) recorded(id string) {
	if id != "" && !e.jsonOut {
		fmt.Fprintf(e.out, "Recorded run %s\n", id)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
