package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/remote"
)

const minPasswordLen = 6

// AuthRequest is the body for register and login.
type AuthRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SessionResponse carries a fresh bearer token and the player it belongs to.
type SessionResponse struct {
	Token  string          `json:"token"`
	Player game.PlayerView `json:"player"`
}

// handleCreatePlayer starts an anonymous player with a generated id.
func handleCreatePlayer(engine *game.Engine, sessions SessionStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := game.NewPlayerID()
		token, err := sessions.CreateSession(r.Context(), id)
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, SessionResponse{
			Token:  token,
			Player: engine.Player(r.Context(), id),
		})
	}
}

func handleRegister(engine *game.Engine, accounts AccountStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || utf8.RuneCountInString(req.Name) > 24 {
			writeError(w, http.StatusBadRequest, "name must be 1 to 24 characters")
			return
		}
		if len(req.Password) < minPasswordLen {
			writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid password")
			return
		}

		id := game.NewPlayerID()
		if _, err := accounts.CreateAccount(r.Context(), req.Name, string(hash), id); err != nil {
			if errors.Is(err, remote.ErrNameTaken) {
				writeError(w, http.StatusConflict, "name already taken")
				return
			}
			logger.Error("creating account", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		player, err := engine.SetName(r.Context(), id, req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		token, err := accounts.CreateSession(r.Context(), id)
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, SessionResponse{Token: token, Player: player})
	}
}

func handleLogin(engine *game.Engine, accounts AccountStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "name and password are required")
			return
		}

		acct, err := accounts.AccountByName(r.Context(), req.Name)
		if errors.Is(err, remote.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			logger.Error("looking up account", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := accounts.CreateSession(r.Context(), acct.PlayerID)
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{
			Token:  token,
			Player: engine.Player(r.Context(), acct.PlayerID),
		})
	}
}

// handleLogout revokes the caller's bearer token. Unknown tokens are not
// an error.
func handleLogout(sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != "" {
			sessions.DeleteSession(r.Context(), token)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
