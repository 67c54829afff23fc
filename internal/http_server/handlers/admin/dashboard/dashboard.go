package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/members"
	"teamshare/internal/models"
	"teamshare/internal/uploads"
)

// MemberRow is a member as the admin sees it. Password hashes and live
// tokens stay server-side.
type MemberRow struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

type Response struct {
	resp.Response
	Members []MemberRow           `json:"members"`
	Uploads []models.UploadRecord `json:"uploads"`
}

func New(
	log *slog.Logger,
	memberSvc *members.Service,
	uploadSvc *uploads.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.dashboard.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ms, err := memberSvc.List(r.Context())
		if err != nil {
			log.Error("failed to list members", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		recs, err := uploadSvc.List(r.Context())
		if err != nil {
			log.Error("failed to list uploads", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		rows := make([]MemberRow, 0, len(ms))
		for _, m := range ms {
			rows = append(rows, MemberRow{
				Username: m.Username,
				Email:    m.Email,
				Verified: m.Verified,
			})
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Members:  rows,
			Uploads:  recs,
		})
	}
}
