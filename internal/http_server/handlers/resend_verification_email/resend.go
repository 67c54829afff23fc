package resendEmail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/members"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	resp.Response
	AlreadyVerified bool `json:"already_verified,omitempty"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	svc *members.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resendVerificationEmail.New"

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

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		status, err := svc.Resend(ctx, req.Email, r.Host)
		if err != nil {
			if errors.Is(err, members.ErrDeliveryFailed) {
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, resp.Error("verification mail could not be sent, try again later"))

				return
			}

			log.Error("failed to resend verification mail", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		// Sent and no-account render identically so the endpoint cannot be
		// used to probe which emails are registered.
		render.JSON(w, r, Response{
			Response:        resp.OK(),
			AlreadyVerified: status == members.ResendAlreadyVerified,
		})
	}
}
