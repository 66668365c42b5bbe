// Package remote is the shared game store every player syncs against.
// Each collection is a table with a JSONB data column; a write to any
// collection wakes the change Feed.
package remote

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNameTaken = errors.New("name already taken")
)

// DocStore implements the game collections on top of libSQL.
type DocStore struct {
	db   *sql.DB
	feed *Feed
}

// NewDocStore wraps db, which must already be migrated. feed may be nil.
func NewDocStore(db *sql.DB, feed *Feed) *DocStore {
	return &DocStore{db: db, feed: feed}
}

// changed signals the feed. Only writes to captures call it, since the
// syncer reads nothing else.
func (s *DocStore) changed() {
	if s.feed != nil {
		s.feed.Notify()
	}
}

func (s *DocStore) get(ctx context.Context, table, id string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *DocStore) put(ctx context.Context, table, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, data) VALUES (?, jsonb(?))`, table),
		id, string(data),
	)
	return err
}

func (s *DocStore) del(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// all decodes every document of table in id order. Rows are fully read
// before returning; SQLite can't have concurrent cursors.
func all[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
