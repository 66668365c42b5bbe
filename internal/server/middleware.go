package server

import (
	"context"
	"net/http"

	"github.com/chomp/streetartctf/internal/remote"
)

type ctxKey int

const (
	ctxKeyPlayer ctxKey = iota
	ctxKeyAdmin
)

const adminCookieName = "admin_session"

func playerAuthMiddleware(sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := playerFromRequest(r, sessions)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid session token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPlayer, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuthMiddleware(admin AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := admin.AdminFromSession(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func playerID(r *http.Request) string {
	return r.Context().Value(ctxKeyPlayer).(string)
}

func adminFrom(r *http.Request) remote.AdminSession {
	return r.Context().Value(ctxKeyAdmin).(remote.AdminSession)
}
