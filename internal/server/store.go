package server

import (
	"context"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/remote"
)

type SessionStore interface {
	CreateSession(ctx context.Context, playerID string) (string, error)
	PlayerFromToken(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

type AccountStore interface {
	SessionStore
	CreateAccount(ctx context.Context, name, passwordHash, playerID string) (remote.Account, error)
	AccountByName(ctx context.Context, name string) (remote.Account, error)
}

type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (remote.Admin, error)
	CreateAdminSession(ctx context.Context, a remote.Admin) (string, error)
	DeleteAdminSession(ctx context.Context, id string) error
	AdminFromSession(ctx context.Context, id string) (remote.AdminSession, error)
	SetStatusOverride(ctx context.Context, artID string, status chomp.ArtStatus) error
}

type StatsStore interface {
	TeamScores(ctx context.Context) (map[chomp.TeamID]remote.TeamScore, error)
	TopPlayers(ctx context.Context, limit int) ([]remote.PlayerAggregate, error)
}

// Store is everything the HTTP layer needs from the shared store.
// *remote.DocStore implements it.
type Store interface {
	AccountStore
	AdminStore
	StatsStore
}
