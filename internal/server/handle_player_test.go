package server

import (
	"net/http"
	"testing"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/game"
)

func TestPlayerRequiresToken(t *testing.T) {
	env := setupServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "unknown", token: "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/player", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestPlayerSettings(t *testing.T) {
	env := setupServer(t)
	token, id := env.newPlayer(t)

	rec := env.do(t, http.MethodGet, "/api/player", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get player status = %d", rec.Code)
	}
	if v := decode[game.PlayerView](t, rec); v.Profile.ID != id || v.Mode != chomp.ModeTeam {
		t.Fatalf("unexpected player: %+v", v)
	}

	rec = env.do(t, http.MethodPut, "/api/player/name", token, NameRequest{Name: "  Ana  "})
	if rec.Code != http.StatusOK {
		t.Fatalf("set name status = %d", rec.Code)
	}
	if v := decode[game.PlayerView](t, rec); v.Profile.Name != "Ana" {
		t.Errorf("name = %q, want Ana", v.Profile.Name)
	}

	if rec := env.do(t, http.MethodPut, "/api/player/name", token, NameRequest{Name: "   "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}

	if rec := env.do(t, http.MethodPut, "/api/player/mode", token, ModeRequest{Mode: chomp.ModeSolo}); rec.Code != http.StatusOK {
		t.Errorf("set mode status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/api/player/mode", token, ModeRequest{Mode: "coop"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want 400", rec.Code)
	}
}

func TestJoinTeam(t *testing.T) {
	env := setupServer(t)
	token, _ := env.newPlayer(t)

	rec := env.do(t, http.MethodPost, "/api/player/team", token, TeamRequest{Team: "green"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown team status = %d, want 400", rec.Code)
	}

	env.joinTeam(t, token, chomp.TeamRed)

	rec = env.do(t, http.MethodPost, "/api/player/team", token, TeamRequest{Team: chomp.TeamBlue})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second join status = %d, want 409", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec).Error; got != "Already on a team" {
		t.Errorf("error = %q", got)
	}
}

func TestResetKeepsID(t *testing.T) {
	env := setupServer(t)
	token, id := env.newPlayer(t)
	env.joinTeam(t, token, chomp.TeamBlue)

	rec := env.do(t, http.MethodPost, "/api/player/reset", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	v := decode[game.PlayerView](t, rec)
	if v.Profile.ID != id || v.Profile.Team != chomp.NoTeam {
		t.Fatalf("unexpected profile after reset: %+v", v.Profile)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", AuthRequest{Name: "Ana", Password: "hunter22"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	reg := decode[SessionResponse](t, rec)
	if reg.Player.Profile.Name != "Ana" {
		t.Errorf("registered name = %q", reg.Player.Profile.Name)
	}

	tests := []struct {
		name string
		path string
		req  AuthRequest
		want int
	}{
		{name: "duplicate name", path: "/api/auth/register", req: AuthRequest{Name: "ana", Password: "hunter22"}, want: http.StatusConflict},
		{name: "short password", path: "/api/auth/register", req: AuthRequest{Name: "Bo", Password: "abc"}, want: http.StatusBadRequest},
		{name: "empty name", path: "/api/auth/register", req: AuthRequest{Name: " ", Password: "hunter22"}, want: http.StatusBadRequest},
		{name: "wrong password", path: "/api/auth/login", req: AuthRequest{Name: "Ana", Password: "nope"}, want: http.StatusUnauthorized},
		{name: "unknown account", path: "/api/auth/login", req: AuthRequest{Name: "Cy", Password: "hunter22"}, want: http.StatusUnauthorized},
		{name: "login", path: "/api/auth/login", req: AuthRequest{Name: "Ana", Password: "hunter22"}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, "", tt.req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusOK {
				resp := decode[SessionResponse](t, rec)
				if resp.Player.Profile.ID != reg.Player.Profile.ID {
					t.Errorf("login player = %q, want %q", resp.Player.Profile.ID, reg.Player.Profile.ID)
				}
				if resp.Token == reg.Token {
					t.Error("expected a fresh token on login")
				}
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupServer(t)
	token, _ := env.newPlayer(t)

	if rec := env.do(t, http.MethodPost, "/api/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/player", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("player after logout = %d, want 401", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("second logout status = %d", rec.Code)
	}
}
