package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chomp/streetartctf/internal/achievement"
	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/remote"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// ArtView is an art piece as shown on the map.
type ArtView struct {
	chomp.ArtPiece
	Points          int `json:"points"`
	CooldownSeconds int `json:"cooldownSeconds,omitempty"`
}

type CaptureRequest struct {
	ArtID    string          `json:"artId"`
	Location *chomp.Location `json:"location,omitempty"`
}

type DiscoverRequest struct {
	ArtID string `json:"artId"`
}

// AchievementView is a catalog achievement plus whether the caller has
// unlocked it.
type AchievementView struct {
	achievement.Achievement
	Unlocked bool `json:"unlocked"`
}

// TeamView is a team with its shared score.
type TeamView struct {
	chomp.Team
	Score    int `json:"score"`
	Captures int `json:"captures"`
}

func artView(r *http.Request, engine *game.Engine, pid string, p chomp.ArtPiece) ArtView {
	v := ArtView{ArtPiece: p, Points: p.Size.Points()}
	if pid != "" {
		v.CooldownSeconds = int(engine.CooldownRemaining(r.Context(), pid, p.ID).Seconds())
	}
	return v
}

// optionalPlayer returns the caller's player id, or "" for anonymous
// requests.
func optionalPlayer(r *http.Request, sessions SessionStore) string {
	id, err := playerFromRequest(r, sessions)
	if err != nil {
		return ""
	}
	return id
}

func handleListArt(engine *game.Engine, sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid := optionalPlayer(r, sessions)
		pieces := engine.Board().Pieces()
		out := make([]ArtView, 0, len(pieces))
		for _, p := range pieces {
			out = append(out, artView(r, engine, pid, p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetArt(engine *game.Engine, sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := engine.Board().Art(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, game.MsgArtNotFound)
			return
		}
		writeJSON(w, http.StatusOK, artView(r, engine, optionalPlayer(r, sessions), p))
	}
}

// handleCapture answers 200 for both accepted and rejected captures;
// the result's success flag tells them apart.
func handleCapture(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CaptureRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, engine.Capture(r.Context(), playerID(r), req.ArtID, req.Location))
	}
}

func handleDiscover(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DiscoverRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, engine.Discover(r.Context(), playerID(r), req.ArtID))
	}
}

func handleActivity(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Activity())
	}
}

func handleAchievements(engine *game.Engine, sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var unlocked achievement.Set
		if pid := optionalPlayer(r, sessions); pid != "" {
			unlocked = engine.Player(r.Context(), pid).Unlocked
		}
		all := achievement.All()
		out := make([]AchievementView, 0, len(all))
		for _, a := range all {
			out = append(out, AchievementView{Achievement: a, Unlocked: unlocked.Has(a.ID)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleTeams(stats StatsStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores, err := stats.TeamScores(r.Context())
		if err != nil {
			logger.Error("reading team scores", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		teams := chomp.Teams()
		out := make([]TeamView, 0, len(teams))
		for _, t := range teams {
			s := scores[t.ID]
			out = append(out, TeamView{Team: t, Score: s.Score, Captures: s.Captures})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleSectors(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, game.Sectors(engine.Board().Pieces()))
	}
}

func handleLeaderboard(stats StatsStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLeaderboardLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxLeaderboardLimit)
		}

		players, err := stats.TopPlayers(r.Context(), limit)
		if err != nil {
			logger.Error("reading leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if players == nil {
			players = []remote.PlayerAggregate{}
		}
		writeJSON(w, http.StatusOK, players)
	}
}
