package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// playerFromRequest resolves the Bearer token on r to a player id.
func playerFromRequest(r *http.Request, sessions SessionStore) (string, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", errNoSession
	}
	return playerFromToken(r.Context(), sessions, token)
}

func playerFromToken(ctx context.Context, sessions SessionStore, token string) (string, error) {
	id, err := sessions.PlayerFromToken(ctx, token)
	if err != nil {
		return "", errNoSession
	}
	return id, nil
}
