// Package backup exports the run history to checksummed, compressed archive
// files and restores it from them.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nvandessel/structsim/internal/store"
)

// DirName is the archive directory under the results directory.
const DirName = "backups"

// filePrefix and fileExt name generated archives.
const (
	filePrefix = "history-"
	fileExt    = ".bak"
)

// DefaultDir returns <resultsDir>/backups.
func DefaultDir(resultsDir string) string {
	return filepath.Join(resultsDir, DirName)
}

// GeneratePath returns a timestamped archive path in dir.
func GeneratePath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.UTC().Format("20060102-150405")+fileExt)
}

// Export writes every run in h to an archive at path.
func Export(ctx context.Context, h *store.History, path string, metadata map[string]string) (*Header, error) {
	listed, err := h.ListRuns(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		CreatedAt: time.Now().UTC(),
		Runs:      make([]store.Run, 0, len(listed)),
	}
	for _, r := range listed {
		full, err := h.GetRun(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", r.ID, err)
		}
		a.Runs = append(a.Runs, *full)
	}

	return Write(path, a, metadata)
}

// RestoreMode controls how Import handles runs already in the history.
type RestoreMode string

const (
	// RestoreMerge skips runs whose id already exists (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace deletes every existing run first.
	RestoreReplace RestoreMode = "replace"
)

// ImportResult counts what Import did.
type ImportResult struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`
}

// Import loads the archive at path into h.
func Import(ctx context.Context, h *store.History, path string, mode RestoreMode) (*ImportResult, error) {
	if mode == "" {
		mode = RestoreMerge
	}
	if mode != RestoreMerge && mode != RestoreReplace {
		return nil, fmt.Errorf("invalid restore mode: %s (valid: merge, replace)", mode)
	}

	_, a, err := Read(path)
	if err != nil {
		return nil, err
	}

	existing, err := h.ListRuns(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		if mode == RestoreReplace {
			if err := h.DeleteRun(ctx, r.ID); err != nil {
				return result, err
			}
			result.Deleted++
			continue
		}
		known[r.ID] = true
	}

	for i := range a.Runs {
		run := a.Runs[i]
		if run.ID == "" {
			return result, fmt.Errorf("archive run %d has no id", i)
		}
		if known[run.ID] {
			result.Skipped++
			continue
		}
		if err := h.SaveRun(ctx, &run); err != nil {
			return result, fmt.Errorf("failed to restore run %s: %w", run.ID, err)
		}
		known[run.ID] = true
		result.Restored++
	}
	return result, nil
}
