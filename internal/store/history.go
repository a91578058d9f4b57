package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/structsim/internal/metrics"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous is returned when an id prefix matches more than one run.
var ErrAmbiguous = errors.New("run id prefix is ambiguous")

// Hypothesis is a named claim checked by a run.
type Hypothesis struct {
	ID          string `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
	Result      bool   `db:"result" json:"result"`
}

// Run is one recorded experiment run.
type Run struct {
	ID         string        `json:"id"`
	Experiment string        `json:"experiment"`
	Seed       int64         `json:"seed"`
	Samples    int           `json:"samples"`
	Config     string        `json:"config,omitempty"`
	ResultPath string        `json:"result_path,omitempty"`
	Passed     *bool         `json:"passed,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`

	Summaries  []metrics.Summary `json:"summaries,omitempty"`
	Hypotheses []Hypothesis      `json:"hypotheses,omitempty"`
}

type runRow struct {
	ID         string         `db:"id"`
	Experiment string         `db:"experiment"`
	Seed       int64          `db:"seed"`
	Samples    int            `db:"samples"`
	Config     sql.NullString `db:"config"`
	ResultPath sql.NullString `db:"result_path"`
	Passed     sql.NullBool   `db:"passed"`
	StartedAt  string         `db:"started_at"`
	DurationMS int64          `db:"duration_ms"`
}

type summaryRow struct {
	RunID            string  `db:"run_id"`
	Label            string  `db:"label"`
	N                int     `db:"n"`
	Mean             float64 `db:"mean"`
	Std              float64 `db:"std"`
	Min              float64 `db:"min"`
	Catastrophic     int     `db:"catastrophic"`
	CatastrophicRate float64 `db:"catastrophic_rate"`
	Effective        float64 `db:"effective"`
}

type hypothesisRow struct {
	RunID string `db:"run_id"`
	Hypothesis
}

// History stores runs in a SQLite database.
type History struct {
	db   *sqlx.DB
	path string
}

// Open opens or creates the history database at path.
func Open(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &History{db: db, path: path}, nil
}

// Path returns the database file path.
func (h *History) Path() string {
	return h.path
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun records run with its summaries and hypotheses. An empty ID is
// replaced by a new UUID and a zero StartedAt by the current time.
func (h *History) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	row := runRow{
		ID:         run.ID,
		Experiment: run.Experiment,
		Seed:       run.Seed,
		Samples:    run.Samples,
		Config:     nullString(run.Config),
		ResultPath: nullString(run.ResultPath),
		StartedAt:  run.StartedAt.UTC().Format(timeLayout),
		DurationMS: run.Duration.Milliseconds(),
	}
	if run.Passed != nil {
		row.Passed = sql.NullBool{Bool: *run.Passed, Valid: true}
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, experiment, seed, samples, config, result_path, passed, started_at, duration_ms)
		VALUES (:id, :experiment, :seed, :samples, :config, :result_path, :passed, :started_at, :duration_ms)`,
		row); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, s := range run.Summaries {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO summaries (run_id, label, n, mean, std, min, catastrophic, catastrophic_rate, effective)
			VALUES (:run_id, :label, :n, :mean, :std, :min, :catastrophic, :catastrophic_rate, :effective)`,
			summaryRow{
				RunID:            run.ID,
				Label:            s.Label,
				N:                s.N,
				Mean:             s.Mean,
				Std:              s.Std,
				Min:              s.Min,
				Catastrophic:     s.Catastrophic,
				CatastrophicRate: s.CatastrophicRate,
				Effective:        s.EffectivePerformance,
			}); err != nil {
			return fmt.Errorf("failed to insert summary %s: %w", s.Label, err)
		}
	}

	for _, hyp := range run.Hypotheses {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO hypotheses (run_id, id, description, result)
			VALUES (:run_id, :id, :description, :result)`,
			hypothesisRow{RunID: run.ID, Hypothesis: hyp}); err != nil {
			return fmt.Errorf("failed to insert hypothesis %s: %w", hyp.ID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns runs newest first, without summaries or hypotheses.
// An empty experiment lists every experiment; limit <= 0 means no limit.
func (h *History) ListRuns(ctx context.Context, experiment string, limit int) ([]Run, error) {
	query := `SELECT * FROM runs`
	var args []any
	if experiment != "" {
		query += ` WHERE experiment = ?`
		args = append(args, experiment)
	}
	query += ` ORDER BY started_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []runRow
	if err := h.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		run, err := row.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetRun returns the run whose id is or starts with id, with its summaries
// and hypotheses.
func (h *History) GetRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	var rows []runRow
	if err := h.db.SelectContext(ctx, &rows, `SELECT * FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%"); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	switch {
	case len(rows) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(rows) > 1 && rows[0].ID != id && rows[1].ID != id:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}

	row := rows[0]
	if len(rows) > 1 && rows[1].ID == id {
		row = rows[1]
	}
	run, err := row.toRun()
	if err != nil {
		return nil, err
	}

	var sums []summaryRow
	if err := h.db.SelectContext(ctx, &sums, `SELECT * FROM summaries WHERE run_id = ? ORDER BY rowid`, run.ID); err != nil {
		return nil, fmt.Errorf("failed to load summaries: %w", err)
	}
	for _, s := range sums {
		run.Summaries = append(run.Summaries, metrics.Summary{
			Label:                s.Label,
			N:                    s.N,
			Mean:                 s.Mean,
			Std:                  s.Std,
			Min:                  s.Min,
			Catastrophic:         s.Catastrophic,
			CatastrophicRate:     s.CatastrophicRate,
			EffectivePerformance: s.Effective,
		})
	}

	var hyps []hypothesisRow
	if err := h.db.SelectContext(ctx, &hyps, `SELECT * FROM hypotheses WHERE run_id = ? ORDER BY id`, run.ID); err != nil {
		return nil, fmt.Errorf("failed to load hypotheses: %w", err)
	}
	for _, hr := range hyps {
		run.Hypotheses = append(run.Hypotheses, hr.Hypothesis)
	}

	return &run, nil
}

// DeleteRun removes a run and its summaries and hypotheses.
func (h *History) DeleteRun(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r runRow) toRun() (Run, error) {
	started, err := time.Parse(timeLayout, r.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, r.StartedAt, err)
	}
	run := Run{
		ID:         r.ID,
		Experiment: r.Experiment,
		Seed:       r.Seed,
		Samples:    r.Samples,
		Config:     r.Config.String,
		ResultPath: r.ResultPath.String,
		StartedAt:  started,
		Duration:   time.Duration(r.DurationMS) * time.Millisecond,
	}
	if r.Passed.Valid {
		passed := r.Passed.Bool
		run.Passed = &passed
	}
	return run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
