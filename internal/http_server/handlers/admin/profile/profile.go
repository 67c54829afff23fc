package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"teamshare/internal/admins"
	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/middleware/sessionauth"
	"teamshare/internal/sessions"
	"teamshare/internal/storage"
)

// Request fields are all optional; blank means keep the current value.
type Request struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type Response struct {
	resp.Response
	Username string `json:"username"`
	Email    string `json:"email"`
}

func New(
	log *slog.Logger,
	svc *admins.Service,
	mgr *sessions.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.profile.New"

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

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		a, err := svc.UpdateProfile(r.Context(), sctx.Identity, req.Username, req.Email, req.NewPassword)
		if err != nil {
			if errors.Is(err, admins.ErrAdminExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("username already taken"))

				return
			}
			if errors.Is(err, storage.ErrAdminNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("admin not found"))

				return
			}

			log.Error("failed to update profile", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		// Follow a rename so the live session keeps working.
		if a.Username != sctx.Identity {
			mgr.Rekey(sessions.RoleAdmin, sctx.Identity, a.Username)
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Username: a.Username,
			Email:    a.Email,
		})
	}
}
