// Package database opens libSQL-backed SQLite databases for the shared
// store and the per-device local store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

const memoryPath = ":memory:"

type options struct {
	busyTimeout time.Duration
	pragmas     []string
}

// Option tunes Open.
type Option func(*options)

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithPragma runs an extra PRAGMA statement after the defaults.
func WithPragma(stmt string) Option {
	return func(o *options) { o.pragmas = append(o.pragmas, stmt) }
}

// Open connects to the SQLite file at path with WAL journaling, a busy
// timeout (5s unless overridden) and foreign keys enabled.
//
// An in-memory database is private to its connection, so ":memory:" pins
// the pool to a single connection.
func Open(ctx context.Context, path string, opts ...Option) (*sql.DB, error) {
	o := options{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	pragmas := append([]string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", o.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON",
	}, o.pragmas...)

	// Some PRAGMAs return a row and libSQL refuses those through Exec,
	// so every statement goes through Query.
	for _, p := range pragmas {
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
