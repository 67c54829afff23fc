package members

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	membersvc "teamshare/internal/members"
	"teamshare/internal/sessions"
	"teamshare/internal/storage"
)

type DeleteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type DeleteResponse struct {
	resp.Response
}

// NewDelete removes a member record and revokes any session that member
// holds, so a deleted account loses access immediately.
func NewDelete(
	log *slog.Logger,
	validate *validator.Validate,
	svc *membersvc.Service,
	mgr *sessions.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.members.NewDelete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req DeleteRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		if err := svc.Delete(r.Context(), req.Email); err != nil {
			if errors.Is(err, storage.ErrMemberNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("member not found"))

				return
			}

			log.Error("failed to delete member", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		mgr.RevokeIdentity(sessions.RoleMember, req.Email)

		render.JSON(w, r, DeleteResponse{Response: resp.OK()})
	}
}
