package download

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "teamshare/internal/lib/api/response"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/uploads"
)

// New streams a stored file to the admin. The name must match a record's
// stored reference; arbitrary paths do not resolve.
func New(log *slog.Logger, svc *uploads.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.download.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		name := chi.URLParam(r, "filename")

		f, err := svc.Open(r.Context(), name)
		if err != nil {
			if errors.Is(err, uploads.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("file not found"))

				return
			}

			log.Error("failed to open stored file", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}
		defer f.Close()

		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Header().Set("Content-Type", "application/octet-stream")

		if _, err := io.Copy(w, f); err != nil {
			log.Warn("download interrupted", sl.Err(err))
		}
	}
}
