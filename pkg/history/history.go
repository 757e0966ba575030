package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/types"
	_ "modernc.org/sqlite"
)

// maxStderr bounds the stderr tail kept per stage
const maxStderr = 4096

// Run is one recorded orchestrator run
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	FailedStage string
	Error       string
	Stages      []StageRecord
}

// Duration returns the wall time of a finished run
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StageRecord is the persisted form of one stage result
type StageRecord struct {
	Stage     string
	ScriptID  string
	Outcome   string
	StartedAt time.Time
	Duration  time.Duration
	Stderr    string
	Error     string
}

// Store is an append-mostly SQLite ledger of runs. It lives outside the
// workspace so the pre-run reset never touches it.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the ledger at path, creating parent directories.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrHistory, "create history directory for %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrHistory, "open sqlite database %s", path)
	}
	// A single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.Wrap(err, errors.ErrHistory, "initialize schema")
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		status TEXT NOT NULL,
		failed_stage TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS stages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		stage TEXT NOT NULL,
		script_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		stderr TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_stages_run_id ON stages(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RunStarted records a new run in the running state
func (s *Store) RunStarted(report *types.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(context.Background(),
		"INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)",
		report.RunID, report.StartedAt.UnixNano(), types.StatusRunning,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrHistory, "insert run")
	}
	return nil
}

// StageFinished appends a stage result to its run
func (s *Store) StageFinished(runID string, result types.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errText string
	if result.Err != nil {
		errText = result.Err.Error()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO stages (run_id, stage, script_id, outcome, started_at, duration_ns, stderr, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Stage, result.ScriptID, result.Outcome(),
		result.StartedAt.UnixNano(), int64(result.Duration), tail(result.Stderr, maxStderr), errText,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrHistory, "insert stage")
	}
	return nil
}

// RunFinished stores the final status of a run. A run that was never
// started, for instance because its input was rejected, is inserted.
func (s *Store) RunFinished(report *types.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errText string
	if report.Err != nil {
		errText = report.Err.Error()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO runs (id, started_at, finished_at, status, failed_stage, error)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			status = excluded.status,
			failed_stage = excluded.failed_stage,
			error = excluded.error`,
		report.RunID, report.StartedAt.UnixNano(), report.FinishedAt.UnixNano(),
		report.Status(), report.FailedStage, errText,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrHistory, "update run")
	}
	return nil
}

// List returns up to limit runs, newest first, with their stages. A limit
// of zero or less returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, started_at, finished_at, status, failed_stage, error FROM runs ORDER BY started_at DESC, rowid DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrHistory, "query runs")
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	for i := range runs {
		stages, err := s.stages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = stages
	}
	return runs, nil
}

// Get returns a single run by id
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, status, failed_stage, error FROM runs WHERE id = ?", id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrHistory, "query run")
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.Newf(errors.ErrHistory, "run %s not found", id).WithDetail("run_id", id)
	}

	run := runs[0]
	if run.Stages, err = s.stages(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, script_id, outcome, started_at, duration_ns, stderr, error
		 FROM stages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrHistory, "query stages")
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var rec StageRecord
		var startedAt, duration int64
		if err := rows.Scan(&rec.Stage, &rec.ScriptID, &rec.Outcome, &startedAt, &duration, &rec.Stderr, &rec.Error); err != nil {
			return nil, errors.Wrap(err, errors.ErrHistory, "scan stage")
		}
		rec.StartedAt = time.Unix(0, startedAt)
		rec.Duration = time.Duration(duration)
		stages = append(stages, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrHistory, "iterate stages")
	}
	return stages, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt int64
		var finishedAt sql.NullInt64
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Status, &run.FailedStage, &run.Error); err != nil {
			return nil, errors.Wrap(err, errors.ErrHistory, "scan run")
		}
		run.StartedAt = time.Unix(0, startedAt)
		if finishedAt.Valid {
			run.FinishedAt = time.Unix(0, finishedAt.Int64)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrHistory, "iterate runs")
	}
	return runs, nil
}

// tail returns at most the last n bytes of s, starting on a rune boundary
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
