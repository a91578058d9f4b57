// Package logging provides leveled logging and trial tracing for structsim.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TrialLogger for structured JSONL trial traces (<results>/trials.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/structsim/internal/constants"
)

// LevelTrace is a custom slog level below Debug. At this level every trial
// is traced, not only the catastrophic ones.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a supported level.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "info", "debug", "trace":
		return true
	}
	return false
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// TrialLogger writes run events and trial traces to a JSONL file.
// It is safe for concurrent use. A nil TrialLogger is safe to use;
// all methods are no-ops on nil receiver.
type TrialLogger struct {
	mu    sync.Mutex
	file  *os.File
	every bool
}

// NewTrialLogger creates a trial logger writing to dir/trials.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" only catastrophic trials are traced; at "trace" every trial is.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewTrialLogger(dir string, level string) *TrialLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, constants.TrialLogFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &TrialLogger{file: f, every: lvl <= LevelTrace}
}

// Log writes an event as a single JSONL line.
// A "time" field is added automatically. The caller's map is not mutated.
// Safe to call on nil receiver.
func (tl *TrialLogger) Log(event map[string]any) {
	if tl == nil || tl.file == nil {
		return
	}

	// Copy to avoid mutating caller's map
	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	tl.mu.Lock()
	defer tl.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = tl.file.Write(data)
}

// Trial traces trial i of label. Non-catastrophic trials are only written
// at trace level. Safe to call on nil receiver.
func (tl *TrialLogger) Trial(experiment, label string, i int, catastrophic bool, trial any) {
	if tl == nil {
		return
	}
	if !catastrophic && !tl.every {
		return
	}
	tl.Log(map[string]any{
		"event":        "trial",
		"experiment":   experiment,
		"label":        label,
		"index":        i,
		"catastrophic": catastrophic,
		"trial":        trial,
	})
}

// Close closes the underlying file. Safe to call on nil receiver.
func (tl *TrialLogger) Close() {
	if tl == nil || tl.file == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.file.Close()
	tl.file = nil
}
