package reply

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/uploads"
)

type Request struct {
	ID    int64  `json:"id" validate:"required"`
	Reply string `json:"reply" validate:"required"`
}

type Response struct {
	resp.Response
}

// New attaches an admin reply to an upload record.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	svc *uploads.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.reply.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

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

		if err := svc.Reply(r.Context(), req.ID, req.Reply); err != nil {
			if errors.Is(err, uploads.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("upload not found"))

				return
			}

			log.Error("failed to attach reply", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}
