package logout

import (
	"net/http"

	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	"teamshare/internal/middleware/sessionauth"
	"teamshare/internal/sessions"
)

type Response struct {
	resp.Response
}

// New terminates whatever session the cookie references. Works for both
// member and admin sessions; logging out twice is harmless.
func New(mgr *sessions.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionauth.CookieName); err == nil {
			mgr.Terminate(cookie.Value)
		}

		sessionauth.ClearCookie(w)

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}
