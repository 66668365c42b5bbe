// Package localstore persists per-player state that never leaves this
// process: profiles, discovered pieces, game mode and unlocked
// achievements. Values are stored as JSON documents keyed by owner.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"maps"
	"sync"
)

type Key string

const (
	KeyPlayer         Key = "player"
	KeyCapturesBackup Key = "captures_backup"
	KeyDiscoveries    Key = "discoveries"
	KeyGameMode       Key = "game_mode"
	KeyAchievements   Key = "achievements"
)

// BoardOwner owns process-wide entries such as the ownership backup.
const BoardOwner = "_board"

var ErrNotFound = errors.New("not found")

type Store interface {
	// Load decodes the value at (owner, key) into dest. It returns
	// ErrNotFound when nothing is stored there.
	Load(ctx context.Context, owner string, key Key, dest any) error
	Save(ctx context.Context, owner string, key Key, v any) error
	// Clear removes every key held by owner.
	Clear(ctx context.Context, owner string) error
}

// SQLStore keeps values in the kv table of a libSQL database.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load(ctx context.Context, owner string, key Key, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM kv WHERE owner = ? AND key = ?`, owner, string(key),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *SQLStore) Save(ctx context.Context, owner string, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (owner, key, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(owner, key) DO UPDATE SET data = excluded.data`,
		owner, string(key), string(data),
	)
	return err
}

func (s *SQLStore) Clear(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE owner = ?`, owner)
	return err
}

// Memory is an in-process Store. Values are round-tripped through JSON
// so it behaves like SQLStore.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[Key][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[Key][]byte)}
}

func (m *Memory) Load(_ context.Context, owner string, key Key, dest any) error {
	m.mu.Lock()
	raw, ok := m.data[owner][key]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *Memory) Save(_ context.Context, owner string, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[owner] == nil {
		m.data[owner] = make(map[Key][]byte)
	}
	m.data[owner][key] = raw
	return nil
}

func (m *Memory) Clear(_ context.Context, owner string) error {
	m.mu.Lock()
	delete(m.data, owner)
	m.mu.Unlock()
	return nil
}

// Keys lists what owner has stored. Used by tests.
func (m *Memory) Keys(owner string) []Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Key
	for k := range maps.Keys(m.data[owner]) {
		out = append(out, k)
	}
	return out
}
