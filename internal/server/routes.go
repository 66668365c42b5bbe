package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/chomp/streetartctf/internal/game"
)

// Deps is everything the HTTP layer is wired to.
type Deps struct {
	Engine *game.Engine
	Store  Store
	Broker *Broker
	Hub    *Hub
	SPADir string
}

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Chomp API", "/openapi.json", "/docs"))
	r.Get("/ws", handleWS(logger, d.Engine, d.Store, d.Broker, d.Hub))

	r.Route("/api", func(r chi.Router) {
		r.Post("/players", handleCreatePlayer(d.Engine, d.Store, logger))
		r.Post("/auth/register", handleRegister(d.Engine, d.Store, logger))
		r.Post("/auth/login", handleLogin(d.Engine, d.Store, logger))
		r.Post("/auth/logout", handleLogout(d.Store))

		r.Get("/art", handleListArt(d.Engine, d.Store))
		r.Get("/art/{id}", handleGetArt(d.Engine, d.Store))
		r.Get("/activity", handleActivity(d.Engine))
		r.Get("/achievements", handleAchievements(d.Engine, d.Store))
		r.Get("/teams", handleTeams(d.Store, logger))
		r.Get("/sectors", handleSectors(d.Engine))
		r.Get("/leaderboard", handleLeaderboard(d.Store, logger))
		r.Get("/events", handleEvents(d.Store, d.Broker))

		// Player routes, Bearer token required.
		r.Group(func(r chi.Router) {
			r.Use(playerAuthMiddleware(d.Store))
			r.Get("/player", handleGetPlayer(d.Engine))
			r.Put("/player/name", handleSetName(d.Engine))
			r.Post("/player/team", handleJoinTeam(d.Engine))
			r.Put("/player/mode", handleSetMode(d.Engine))
			r.Post("/player/reset", handleReset(d.Engine))
			r.Post("/capture", handleCapture(d.Engine))
			r.Post("/discover", handleDiscover(d.Engine))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handleAdminLogin(d.Store, logger))
			r.Post("/logout", handleAdminLogout(d.Store))

			r.Group(func(r chi.Router) {
				r.Use(adminAuthMiddleware(d.Store))
				r.Get("/me", handleAdminMe())
				r.Put("/art/{id}/status", handleAdminSetArtStatus(d.Engine, d.Store, logger))
			})
		})
	})

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
		}
	}
}
