package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/middleware/sessionauth"
	"teamshare/internal/models"
	"teamshare/internal/notify"
	"teamshare/internal/uploads"
)

type Response struct {
	resp.Response
	Member  string                `json:"member"`
	Recent  []models.Event        `json:"recent"`
	Uploads []models.UploadRecord `json:"uploads"`
}

// New returns the member dashboard: the caller's identity, the recent-event
// snapshot from the hub ring, and the upload board.
func New(log *slog.Logger, hub *notify.Hub, svc *uploads.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sctx, ok := sessionauth.FromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("authentication required"))

			return
		}

		recs, err := svc.List(r.Context())
		if err != nil {
			log.Error("failed to list uploads", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Member:   sctx.Identity,
			Recent:   hub.Recent(),
			Uploads:  recs,
		})
	}
}
