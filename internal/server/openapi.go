package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/remote"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type artPath struct {
	ID string `path:"id"`
}

type leaderboardQuery struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"10"`
}

type tokenQuery struct {
	Token string `query:"token" required:"true"`
}

// adminArtStatusRequest needs both a path parameter and a body.
type adminArtStatusRequest struct {
	ID string `path:"id"`
	ArtStatusRequest
}

type operation struct {
	method, path, summary string
	req                   any
	resp                  any
	errors                []int
}

var operations = []operation{
	{http.MethodPost, "/api/players", "Start an anonymous player", nil, SessionResponse{}, nil},
	{http.MethodPost, "/api/auth/register", "Register a named account", AuthRequest{}, SessionResponse{}, []int{http.StatusBadRequest, http.StatusConflict}},
	{http.MethodPost, "/api/auth/login", "Log in to an account", AuthRequest{}, SessionResponse{}, []int{http.StatusBadRequest, http.StatusUnauthorized}},
	{http.MethodPost, "/api/auth/logout", "Revoke the bearer token", nil, nil, nil},

	{http.MethodGet, "/api/art", "List art pieces", nil, []ArtView{}, nil},
	{http.MethodGet, "/api/art/{id}", "Get an art piece", artPath{}, ArtView{}, []int{http.StatusNotFound}},
	{http.MethodGet, "/api/activity", "Recent captures", nil, []game.CaptureEvent{}, nil},
	{http.MethodGet, "/api/achievements", "Achievement catalog", nil, []AchievementView{}, nil},
	{http.MethodGet, "/api/teams", "Teams and scores", nil, []TeamView{}, nil},
	{http.MethodGet, "/api/sectors", "Sector control", nil, []game.Sector{}, nil},
	{http.MethodGet, "/api/leaderboard", "Top players", leaderboardQuery{}, []remote.PlayerAggregate{}, []int{http.StatusBadRequest}},
	{http.MethodGet, "/api/events", "Server-sent game events", tokenQuery{}, nil, []int{http.StatusUnauthorized}},
	{http.MethodGet, "/ws", "WebSocket game events", tokenQuery{}, nil, []int{http.StatusUnauthorized}},

	{http.MethodGet, "/api/player", "Current player", nil, game.PlayerView{}, []int{http.StatusUnauthorized}},
	{http.MethodPut, "/api/player/name", "Rename player", NameRequest{}, game.PlayerView{}, []int{http.StatusBadRequest, http.StatusUnauthorized}},
	{http.MethodPost, "/api/player/team", "Join a team", TeamRequest{}, game.PlayerView{}, []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict}},
	{http.MethodPut, "/api/player/mode", "Set game mode", ModeRequest{}, game.PlayerView{}, []int{http.StatusBadRequest, http.StatusUnauthorized}},
	{http.MethodPost, "/api/player/reset", "Reset player progress", nil, game.PlayerView{}, []int{http.StatusUnauthorized}},
	{http.MethodPost, "/api/capture", "Capture an art piece", CaptureRequest{}, game.CaptureResult{}, []int{http.StatusBadRequest, http.StatusUnauthorized}},
	{http.MethodPost, "/api/discover", "Discover an art piece", DiscoverRequest{}, game.DiscoverResult{}, []int{http.StatusBadRequest, http.StatusUnauthorized}},

	{http.MethodPost, "/api/admin/login", "Admin login", AdminLoginRequest{}, AdminMeResponse{}, []int{http.StatusBadRequest, http.StatusUnauthorized}},
	{http.MethodPost, "/api/admin/logout", "Admin logout", nil, nil, nil},
	{http.MethodGet, "/api/admin/me", "Current admin", nil, AdminMeResponse{}, []int{http.StatusUnauthorized}},
	{http.MethodPut, "/api/admin/art/{id}/status", "Override art status", adminArtStatusRequest{}, ArtView{}, []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized}},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Chomp API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Chomp street art capture game.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		if op.resp != nil {
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(http.StatusOK))
		}
		for _, status := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
