package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/chomp/streetartctf/internal/chomp"
)

func adminLogin(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/admin/login", "", AdminLoginRequest{Email: " Admin@Example.com ", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName {
			return c
		}
	}
	t.Fatal("no admin cookie set")
	return nil
}

func TestAdminLogin(t *testing.T) {
	env := setupServer(t)

	tests := []struct {
		name string
		req  AdminLoginRequest
		want int
	}{
		{name: "missing fields", req: AdminLoginRequest{}, want: http.StatusBadRequest},
		{name: "wrong password", req: AdminLoginRequest{Email: "admin@example.com", Password: "nope"}, want: http.StatusUnauthorized},
		{name: "unknown email", req: AdminLoginRequest{Email: "who@example.com", Password: "secret"}, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPost, "/api/admin/login", "", tt.req); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if rec := env.do(t, http.MethodGet, "/api/admin/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without cookie = %d, want 401", rec.Code)
	}

	cookie := adminLogin(t, env)
	rec := env.do(t, http.MethodGet, "/api/admin/me", "", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	if me := decode[AdminMeResponse](t, rec); me.Email != "admin@example.com" {
		t.Errorf("email = %q", me.Email)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/logout", "", nil, cookie); rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/admin/me", "", nil, cookie); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", rec.Code)
	}
}

func TestAdminSetArtStatus(t *testing.T) {
	env := setupServer(t)
	cookie := adminLogin(t, env)

	tests := []struct {
		name   string
		id     string
		status chomp.ArtStatus
		want   int
	}{
		{name: "ghost", id: "art-004", status: chomp.StatusGhost, want: http.StatusOK},
		{name: "invalid status", id: "art-004", status: "gone", want: http.StatusBadRequest},
		{name: "unknown art", id: "art-999", status: chomp.StatusGhost, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/api/admin/art/"+tt.id+"/status", "", ArtStatusRequest{Status: tt.status}, cookie)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec, err := env.store.Capture(context.Background(), "art-004")
	if err != nil {
		t.Fatalf("capture record: %v", err)
	}
	if rec.StatusOverride != chomp.StatusGhost {
		t.Errorf("override = %q, want ghost", rec.StatusOverride)
	}

	unauth := env.do(t, http.MethodPut, "/api/admin/art/art-004/status", "", ArtStatusRequest{Status: chomp.StatusActive})
	if unauth.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", unauth.Code)
	}
}
