package server

import (
	"errors"
	"net/http"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/game"
)

type NameRequest struct {
	Name string `json:"name"`
}

type TeamRequest struct {
	Team chomp.TeamID `json:"team"`
}

type ModeRequest struct {
	Mode chomp.GameMode `json:"mode"`
}

func handleGetPlayer(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Player(r.Context(), playerID(r)))
	}
}

func handleSetName(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NameRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := engine.SetName(r.Context(), playerID(r), req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "name must be 1 to 24 characters")
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleJoinTeam(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TeamRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := engine.JoinTeam(r.Context(), playerID(r), req.Team)
		switch {
		case errors.Is(err, game.ErrUnknownTeam):
			writeError(w, http.StatusBadRequest, "Unknown team")
			return
		case errors.Is(err, game.ErrAlreadyOnTeam):
			writeError(w, http.StatusConflict, "Already on a team")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleSetMode(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ModeRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		v, err := engine.SetMode(r.Context(), playerID(r), req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "mode must be team or solo")
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleReset(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Reset(r.Context(), playerID(r)))
	}
}
