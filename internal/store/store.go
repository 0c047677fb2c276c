// Package store manages access to the on-disk SQLite attendance store:
// connection acquisition with bounded retries, durability pragmas, scoped
// handles, and schema migration.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/timeclock/internal/config"
	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/logfields"
	"git.home.luguber.info/inful/timeclock/internal/metrics"
	"git.home.luguber.info/inful/timeclock/internal/retry"
)

// Querier is the subset of database/sql shared by *sql.DB, *sql.Tx and
// *sql.Conn. Repository code is written against it so the same queries run
// standalone or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DialFunc opens a database handle for the given DSN. Injectable for tests.
type DialFunc func(dsn string) (*sql.DB, error)

// Manager acquires short-lived handles to the attendance store. Every logical
// operation acquires its own handle and releases it on every exit path.
type Manager struct {
	cfg    config.DatabaseConfig
	policy retry.Policy
	rec    metrics.Recorder
	dial   DialFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRecorder injects a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(m *Manager) {
		if rec != nil {
			m.rec = rec
		}
	}
}

// WithDial replaces the handle opener (used by tests to simulate failures).
func WithDial(dial DialFunc) Option {
	return func(m *Manager) {
		if dial != nil {
			m.dial = dial
		}
	}
}

// NewManager creates a connection manager for the configured store.
func NewManager(cfg config.DatabaseConfig, policy retry.Policy, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		policy: policy,
		rec:    metrics.NoopRecorder{},
		dial:   defaultDial,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultDial(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer at a time; concurrent access degrades to the busy timeout
	// instead of SQLITE_BUSY races inside a single handle.
	db.SetMaxOpenConns(1)
	return db, nil
}

// DSN builds the driver connection string with durability and concurrency
// pragmas: WAL journaling, bounded busy wait, normal fsync, foreign keys, and
// IMMEDIATE transaction lock acquisition.
func (m *Manager) DSN() string {
	busyMS := m.cfg.BusyTimeoutDuration().Milliseconds()
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyMS))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	return "file:" + m.cfg.Path + "?" + q.Encode()
}

func (m *Manager) inMemory() bool {
	return m.cfg.Path == ":memory:" || strings.Contains(m.cfg.Path, "mode=memory")
}

func (m *Manager) ensureDir() error {
	if m.inMemory() {
		return nil
	}
	dir := filepath.Dir(m.cfg.Path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Acquire opens a handle to the store and verifies liveness, retrying
// transient failures with backoff up to the policy's attempt budget. Partially
// opened handles are closed between attempts; after exhaustion a retryable
// connection error is returned and no handle is leaked.
func (m *Manager) Acquire(ctx context.Context) (*sql.DB, error) {
	if err := m.ensureDir(); err != nil {
		return nil, errors.ConnectionError(err, "failed to create store directory").
			WithContext("path", m.cfg.Path)
	}

	dsn := m.DSN()
	var lastErr error
	for attempt := 1; attempt <= m.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			m.rec.IncConnectionRetry()
			delay := m.policy.Delay(attempt - 1)
			slog.Debug("Retrying store connection",
				logfields.Attempt(attempt),
				logfields.Path(m.cfg.Path),
				logfields.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, errors.ConnectionError(ctx.Err(), "store connection canceled")
			case <-time.After(delay):
			}
		}

		db, err := m.dial(dsn)
		if err != nil {
			lastErr = err
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, m.cfg.AcquireTimeoutDuration())
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			_ = db.Close()
			lastErr = err
			continue
		}
		return db, nil
	}

	m.rec.IncConnectionExhausted()
	slog.Error("Store unreachable after retries",
		logfields.Attempt(m.policy.MaxAttempts),
		logfields.Path(m.cfg.Path),
		logfields.Error(lastErr))
	return nil, errors.ConnectionError(lastErr, "store unreachable after retries").
		WithContext("attempts", m.policy.MaxAttempts)
}

// With runs fn with a scoped handle, guaranteeing release on every exit path.
func (m *Manager) With(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return fn(db)
}

// WithImmediateTx runs fn inside a single IMMEDIATE transaction on a scoped
// handle: the write lock is taken up front, so a read-then-write pair inside
// fn cannot interleave with another writer. Commits on nil error, rolls back
// otherwise.
func (m *Manager) WithImmediateTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil) // IMMEDIATE via _txlock in the DSN
	if err != nil {
		return errors.StorageError(err, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.StorageError(err, "failed to commit transaction")
	}
	return nil
}
