package history

//go:generate $MOCKGEN -source=store.go -destination=mocks/store_mock.go

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	"github.com/oshokin/qobuz-grabber/internal/constants"
)

const (
	// connectionPragmas are applied by the driver to each new connection.
	connectionPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	// maxOpenConns serializes access to the database file.
	maxOpenConns = 1
	// sqliteBusyCode is the SQLITE_BUSY result code.
	sqliteBusyCode = 5
	// busyRetryAttempts bounds retries of a busy write.
	busyRetryAttempts = 5
	// busyRetryInitialBackoff is the first delay between busy retries.
	busyRetryInitialBackoff = 10 * time.Millisecond
	// busyRetryMaxBackoff caps the delay between busy retries.
	busyRetryMaxBackoff = 200 * time.Millisecond
	// linkSeparator joins links in a single column.
	linkSeparator = "\n"
)

// Run is one persisted acquisition run.
type Run struct {
	// RequestID is the per-run identifier that also namespaces the staging folder.
	RequestID string
	// URL is the catalog URL the run was started with.
	URL string
	// Kind is the resolved catalog kind, empty when resolution failed.
	Kind string
	// RefID is the resolved catalog id.
	RefID string
	// Requester is the notification recipient that asked for the run.
	Requester string
	// State is the last state the run reached.
	State string
	// Links are the delivery links produced by the run.
	Links []string
	// Failures is the number of items that failed inside the run.
	Failures int
	// Error is the terminal error text of a failed run.
	Error string
	// StartedAt is when the run began.
	StartedAt time.Time
	// FinishedAt is when the run ended; zero while it is in progress.
	FinishedAt time.Time
}

// Store records runs.
type Store interface {
	// StartRun inserts a new run.
	StartRun(ctx context.Context, run *Run) error
	// UpdateRun stores the resolved reference and state of a run.
	UpdateRun(ctx context.Context, run *Run) error
	// FinishRun stores the final state, links and error of a run.
	FinishRun(ctx context.Context, run *Run) error
	// GetRun returns one run by request id.
	GetRun(ctx context.Context, requestID string) (*Run, error)
	// ListRuns returns the latest runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// Close releases the database.
	Close() error
}

// SQLiteStore implements the Store interface on top of SQLite.
type SQLiteStore struct {
	// db is the database handle.
	db *sql.DB
	// path is the database file.
	path string
}

// Open creates or opens the history database at path.
func Open(ctx context.Context, path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
			return nil, fmt.Errorf("failed to create history folder: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?"+connectionPragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)

	store := &SQLiteStore{db: db, path: path}

	if err = store.initSchema(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return store, nil
}

// initSchema creates the runs table when it is missing.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	request_id  TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT '',
	ref_id      TEXT NOT NULL DEFAULT '',
	requester   TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL,
	links       TEXT NOT NULL DEFAULT '',
	failures    INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}

	return nil
}

// StartRun inserts a new run.
func (s *SQLiteStore) StartRun(ctx context.Context, run *Run) error {
	return s.exec(ctx, `
INSERT INTO runs (request_id, url, kind, ref_id, requester, state, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RequestID, run.URL, run.Kind, run.RefID, run.Requester, run.State, toMillis(run.StartedAt))
}

// UpdateRun stores the resolved reference and state of a run.
func (s *SQLiteStore) UpdateRun(ctx context.Context, run *Run) error {
	return s.exec(ctx, `
UPDATE runs SET kind = ?, ref_id = ?, state = ? WHERE request_id = ?`,
		run.Kind, run.RefID, run.State, run.RequestID)
}

// FinishRun stores the final state, links and error of a run.
func (s *SQLiteStore) FinishRun(ctx context.Context, run *Run) error {
	return s.exec(ctx, `
UPDATE runs
SET kind = ?, ref_id = ?, state = ?, links = ?, failures = ?, error = ?, finished_at = ?
WHERE request_id = ?`,
		run.Kind,
		run.RefID,
		run.State,
		strings.Join(run.Links, linkSeparator),
		run.Failures,
		run.Error,
		toMillis(run.FinishedAt),
		run.RequestID)
}

// GetRun returns one run by request id.
func (s *SQLiteStore) GetRun(ctx context.Context, requestID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE request_id = ?`, requestID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, requestID)
	}

	return run, err
}

// ListRuns returns the latest runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	defer rows.Close() //nolint:errcheck // Error on close is not critical here.

	var runs []*Run

	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// selectRuns is the column list shared by the read queries.
const selectRuns = `
SELECT request_id, url, kind, ref_id, requester, state, links, failures, error, started_at, finished_at
FROM runs`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one run from a result row.
func scanRun(row rowScanner) (*Run, error) {
	var (
		run                   Run
		links                 string
		startedAt, finishedAt int64
	)

	err := row.Scan(
		&run.RequestID,
		&run.URL,
		&run.Kind,
		&run.RefID,
		&run.Requester,
		&run.State,
		&links,
		&run.Failures,
		&run.Error,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if links != "" {
		run.Links = strings.Split(links, linkSeparator)
	}

	run.StartedAt = fromMillis(startedAt)
	run.FinishedAt = fromMillis(finishedAt)

	return &run, nil
}

// exec runs a write statement, retrying while the database is busy.
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff

	var err error

	for attempt := range busyRetryAttempts {
		if _, err = s.db.ExecContext(ctx, query, args...); err == nil {
			return nil
		}

		if !isSQLiteBusy(err) || attempt == busyRetryAttempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = min(delay*2, busyRetryMaxBackoff) //nolint:mnd // Exponential backoff.
	}

	return fmt.Errorf("failed to write history: %w", err)
}

// isSQLiteBusy reports whether err is a busy or locked database error.
func isSQLiteBusy(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// toMillis converts a time to unix milliseconds, keeping zero as zero.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

// fromMillis converts unix milliseconds to a time, keeping zero as zero.
func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms)
}

// NopStore discards every run; it is used when history is disabled.
type NopStore struct{}

// NewNopStore creates a store that records nothing.
func NewNopStore() Store {
	return NopStore{}
}

// StartRun does nothing.
func (NopStore) StartRun(context.Context, *Run) error { return nil }

// UpdateRun does nothing.
func (NopStore) UpdateRun(context.Context, *Run) error { return nil }

// FinishRun does nothing.
func (NopStore) FinishRun(context.Context, *Run) error { return nil }

// GetRun always reports a missing run.
func (NopStore) GetRun(_ context.Context, requestID string) (*Run, error) {
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, requestID)
}

// ListRuns returns no runs.
func (NopStore) ListRuns(context.Context, int) ([]*Run, error) { return nil, nil }

// Close does nothing.
func (NopStore) Close() error { return nil }
