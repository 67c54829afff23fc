package upload

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/middleware/sessionauth"
	"teamshare/internal/models"
	"teamshare/internal/uploads"
)

type Response struct {
	resp.Response
	Record models.UploadRecord `json:"record"`
}

// New accepts a multipart upload under the form field "file", with an
// optional "message" text field. The session identity becomes the record's
// display name.
func New(log *slog.Logger, svc *uploads.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.upload.New"

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

		r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxSize+(1<<20))

		file, header, err := r.FormFile("file")
		if err != nil {
			log.Warn("missing or oversized file field", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("missing file"))

			return
		}
		defer file.Close()

		rec, err := svc.Accept(
			r.Context(),
			file,
			header.Filename,
			header.Header.Get("Content-Type"),
			header.Size,
			sctx.Identity,
			r.FormValue("message"),
		)
		if err != nil {
			if errors.Is(err, uploads.ErrUnsupportedType) {
				render.Status(r, http.StatusUnsupportedMediaType)
				render.JSON(w, r, resp.Error("file type not allowed"))

				return
			}
			if errors.Is(err, uploads.ErrTooLarge) {
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.JSON(w, r, resp.Error("file exceeds 50 MiB"))

				return
			}

			log.Error("failed to accept upload", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Record:   rec,
		})
	}
}
