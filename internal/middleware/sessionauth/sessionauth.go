// Package sessionauth gates protected routes on a live session of the
// required role. The session identifier travels in an HttpOnly cookie; the
// context it maps to never leaves the server.
package sessionauth

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	"teamshare/internal/sessions"
)

const CookieName = "session_id"

type ctxKey struct{}

// Require rejects requests without a valid session of role with 401.
func Require(mgr *sessions.Manager, role sessions.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				unauthorized(w, r)
				return
			}

			sctx, ok := mgr.Get(cookie.Value, role)
			if !ok {
				unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), ctxKey{}, sctx),
			))
		})
	}
}

// RequireAny accepts a live session of any of the given roles.
func RequireAny(mgr *sessions.Manager, roles ...sessions.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				unauthorized(w, r)
				return
			}

			for _, role := range roles {
				if sctx, ok := mgr.Get(cookie.Value, role); ok {
					next.ServeHTTP(w, r.WithContext(
						context.WithValue(r.Context(), ctxKey{}, sctx),
					))
					return
				}
			}

			unauthorized(w, r)
		})
	}
}

// FromContext returns the session context Require stored on the request.
func FromContext(ctx context.Context) (sessions.Context, bool) {
	sctx, ok := ctx.Value(ctxKey{}).(sessions.Context)
	return sctx, ok
}

// SetCookie hands the session identifier to the client.
func SetCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie client-side.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error("authentication required"))
}
