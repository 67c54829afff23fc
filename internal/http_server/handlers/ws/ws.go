package ws

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	"teamshare/internal/middleware/sessionauth"
	"teamshare/internal/notify"
)

// New upgrades the connection and hands it to the hub. The session identity
// is stamped onto every chat event the client sends.
func New(log *slog.Logger, hub *notify.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sctx, ok := sessionauth.FromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("authentication required"))

			return
		}

		hub.ServeWS(log, sctx.Identity, w, r)
	}
}
