package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Account binds a login name to a player id.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PlayerID     string    `json:"playerId"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type sessionDoc struct {
	PlayerID  string    `json:"playerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateAccount stores a new account. Names are unique ignoring case.
func (s *DocStore) CreateAccount(ctx context.Context, name, passwordHash, playerID string) (Account, error) {
	a := Account{
		ID:           newToken(),
		Name:         name,
		PlayerID:     playerID,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(a)
	if err != nil {
		return Account{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, data) VALUES (?, ?, jsonb(?))`,
		a.ID, a.Name, string(data),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Account{}, ErrNameTaken
		}
		return Account{}, err
	}
	return a, nil
}

func (s *DocStore) AccountByName(ctx context.Context, name string) (Account, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM accounts WHERE name = ?`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	var a Account
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// CreateSession issues a bearer token for playerID.
func (s *DocStore) CreateSession(ctx context.Context, playerID string) (string, error) {
	token := newToken()
	if err := s.put(ctx, "sessions", token, sessionDoc{PlayerID: playerID, CreatedAt: time.Now().UTC()}); err != nil {
		return "", err
	}
	return token, nil
}

// PlayerFromToken resolves a bearer token to its player id.
func (s *DocStore) PlayerFromToken(ctx context.Context, token string) (string, error) {
	var sess sessionDoc
	if err := s.get(ctx, "sessions", token, &sess); err != nil {
		return "", err
	}
	return sess.PlayerID, nil
}

func (s *DocStore) DeleteSession(ctx context.Context, token string) error {
	return s.del(ctx, "sessions", token)
}
