// Package storage implements the ledger store on SQLite. Every multi-step
// mutation in the services layer runs through Store.InTx, which is the unit
// of work: all writes inside the callback commit together or roll back
// together. Serialization conflicts surface as core.ErrStorageConflict.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/XaviGIT/budget-app/internal/core"

	sqlite3 "modernc.org/sqlite"
)

// DBTX is the common surface of *sql.DB and *sql.Tx that queries run on.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles all entity queries over one DBTX. Inside a unit of work it
// is bound to the transaction; for plain reads it is bound to the pool.
type Queries struct {
	db DBTX
}

// New creates Queries bound to the given connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Store struct {
	db      *sql.DB
	queries *Queries
}

// txAttempts bounds the automatic retry on serialization conflicts before
// the error is surfaced to the caller.
const txAttempts = 3

// Open opens (or creates) the database at dbPath, applies migrations, and
// returns a ready store. The single write connection serializes all units of
// work; transactions begin locked (_txlock=immediate) so two concurrent
// balance mutations can never interleave.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, queries: New(db)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Queries returns auto-commit queries for single-statement reads.
func (s *Store) Queries() *Queries {
	return s.queries
}

// InTx runs fn inside one storage transaction. On core.ErrStorageConflict
// the whole unit of work is retried up to txAttempts times; any other error
// rolls back and propagates unchanged.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !errors.Is(err, core.ErrStorageConflict) {
			return err
		}
		slog.WarnContext(ctx, "Storage conflict, retrying unit of work",
			"attempt", attempt, "max_attempts", txAttempts)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// SQLite primary result codes that mean the write lost a serialization race.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// classify maps driver-level lock contention onto the retryable
// core.ErrStorageConflict; everything else passes through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return fmt.Errorf("%v: %w", err, core.ErrStorageConflict)
		}
	}
	return err
}

// nullable converts an empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// orEmpty unwraps a nullable text column.
func orEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
