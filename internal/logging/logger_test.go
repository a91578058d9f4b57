package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase INFO", "INFO", slog.LevelInfo},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"info level", "info"},
		{"debug level", "debug"},
		{"trace level", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)
			if logger == nil {
				t.Fatal("NewLogger returned nil")
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"trace passes debug", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			hasDebug := strings.Contains(buf.String(), "debug message")
			if hasDebug != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", hasDebug, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			hasInfo := strings.Contains(buf.String(), "info message")
			if hasInfo != tt.logAtInfo {
				t.Errorf("info message visible = %v, want %v (buf: %q)", hasInfo, tt.logAtInfo, buf.String())
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"info", "debug", "trace", "TRACE"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false", lvl)
		}
	}
	for _, lvl := range []string{"", "warn", "verbose"} {
		if ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = true", lvl)
		}
	}
}

func TestLevelTrace(t *testing.T) {
	// Trace should be below debug (more verbose)
	if LevelTrace >= slog.LevelDebug {
		t.Errorf("LevelTrace (%d) should be less than LevelDebug (%d)", LevelTrace, slog.LevelDebug)
	}
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse JSONL entry %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNewTrialLogger_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	tl := NewTrialLogger(dir, "info")

	// At info level, trial logger should be nil
	if tl != nil {
		t.Error("expected nil TrialLogger at info level")
	}

	// Nil logger should still be safe to use
	tl.Log(map[string]any{"event": "test"})
	tl.Trial("performance", "S1", 0, true, nil)

	path := filepath.Join(dir, "trials.jsonl")
	if _, err := os.Stat(path); err == nil {
		t.Error("trials.jsonl should not exist at info level")
	}
}

func TestNewTrialLogger_DebugLevel(t *testing.T) {
	dir := t.TempDir()
	tl := NewTrialLogger(dir, "debug")
	defer tl.Close()

	tl.Log(map[string]any{"event": "run_start", "seed": 42.0})

	entries := readLines(t, filepath.Join(dir, "trials.jsonl"))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["event"] != "run_start" {
		t.Errorf("event = %v, want run_start", entries[0]["event"])
	}
	if entries[0]["seed"] != 42.0 {
		t.Errorf("seed = %v, want 42", entries[0]["seed"])
	}
	if _, ok := entries[0]["time"]; !ok {
		t.Error("expected 'time' field in trial log entry")
	}
}

func TestTrialLogger_TrialFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"debug", 1},
		{"trace", 2},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			dir := t.TempDir()
			tl := NewTrialLogger(dir, tt.level)
			defer tl.Close()

			tl.Trial("stress", "baseline_S1", 3, true, map[string]float64{"outcome": -10})
			tl.Trial("stress", "baseline_S1", 4, false, map[string]float64{"outcome": 6.2})

			entries := readLines(t, filepath.Join(dir, "trials.jsonl"))
			if len(entries) != tt.want {
				t.Fatalf("got %d entries, want %d", len(entries), tt.want)
			}
			first := entries[0]
			if first["label"] != "baseline_S1" || first["index"] != 3.0 || first["catastrophic"] != true {
				t.Errorf("unexpected first entry: %v", first)
			}
		})
	}
}

func TestTrialLogger_NilSafety(t *testing.T) {
	// nil TrialLogger should not panic
	var tl *TrialLogger
	tl.Log(map[string]any{"event": "should_not_panic"})
	tl.Trial("judgment", "B", 0, true, nil)
	tl.Close()
}

func TestTrialLogger_DoesNotMutateCallerMap(t *testing.T) {
	dir := t.TempDir()
	tl := NewTrialLogger(dir, "debug")
	defer tl.Close()

	event := map[string]any{"event": "test"}
	tl.Log(event)

	if _, hasTime := event["time"]; hasTime {
		t.Error("Log() should not mutate caller's map, but 'time' was injected")
	}
}

func TestTrialLogger_LogAfterClose(t *testing.T) {
	dir := t.TempDir()
	tl := NewTrialLogger(dir, "debug")

	tl.Log(map[string]any{"event": "before_close"})
	tl.Close()

	// Should be a no-op, not panic or error
	tl.Log(map[string]any{"event": "after_close"})

	if got := len(readLines(t, filepath.Join(dir, "trials.jsonl"))); got != 1 {
		t.Errorf("got %d entries, want 1", got)
	}
}

func TestNewTrialLogger_CreatesDir(t *testing.T) {
	base := t.TempDir()
	nestedDir := filepath.Join(base, "sub", "dir")

	tl := NewTrialLogger(nestedDir, "debug")
	if tl == nil {
		t.Fatal("expected non-nil TrialLogger when dir needs creation")
	}
	defer tl.Close()

	tl.Log(map[string]any{"event": "dir_create_test"})

	path := filepath.Join(nestedDir, "trials.jsonl")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("trials.jsonl should exist after dir creation: %v", err)
	}
}

func TestTrialLogger_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	tl := NewTrialLogger(dir, "debug")
	defer tl.Close()

	tl.Log(map[string]any{"event": "perm_test"})

	info, err := os.Stat(filepath.Join(dir, "trials.jsonl"))
	if err != nil {
		t.Fatalf("failed to stat trials.jsonl: %v", err)
	}

	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}
