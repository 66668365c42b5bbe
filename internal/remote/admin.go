package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Admin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type AdminSession struct {
	ID      string `json:"id"`
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
}

// SeedAdmin creates the first admin when the admins table is empty.
func (s *DocStore) SeedAdmin(ctx context.Context, email, passwordHash string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	a := Admin{ID: newToken(), Email: email, PasswordHash: passwordHash}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, data) VALUES (?, ?, jsonb(?))`,
		a.ID, a.Email, string(data),
	)
	return err
}

func (s *DocStore) AdminByEmail(ctx context.Context, email string) (Admin, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM admins WHERE email = ?`, email,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	if err != nil {
		return Admin{}, err
	}
	var a Admin
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return Admin{}, err
	}
	return a, nil
}

func (s *DocStore) CreateAdminSession(ctx context.Context, a Admin) (string, error) {
	sess := AdminSession{ID: newToken(), AdminID: a.ID, Email: a.Email}
	if err := s.put(ctx, "admin_sessions", sess.ID, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (s *DocStore) DeleteAdminSession(ctx context.Context, id string) error {
	return s.del(ctx, "admin_sessions", id)
}

func (s *DocStore) AdminFromSession(ctx context.Context, id string) (AdminSession, error) {
	var sess AdminSession
	err := s.get(ctx, "admin_sessions", id, &sess)
	return sess, err
}
