package verify

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/members"
)

type Response struct {
	resp.Response
}

func New(log *slog.Logger, svc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := r.URL.Query().Get("token")
		if token == "" {
			log.Warn("missing verification token")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("missing token"))

			return
		}

		if err := svc.Verify(r.Context(), token); err != nil {
			// Expired is reported distinctly so the client can offer resend.
			if errors.Is(err, members.ErrTokenExpired) {
				render.Status(r, http.StatusGone)
				render.JSON(w, r, resp.Error("token expired, request a new one"))

				return
			}
			if errors.Is(err, members.ErrInvalidToken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("invalid or already used token"))

				return
			}

			log.Error("failed to verify member", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}
