package images

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	resp "freelance_service/internal/lib/api/response"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"
	"freelance_service/internal/uploads"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const (
	formField = "images"
	maxMemory = 32 << 20
)

type Response struct {
	resp.Response
	Success bool                   `json:"success"`
	Images  []models.UploadedImage `json:"images,omitempty"`
}

type Uploader interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]models.UploadedImage, error)
}

// New stores every file of the multipart field "images". maxBody caps the
// whole request body.
func New(log *slog.Logger, uploader Uploader, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.images.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			log.Error("failed to parse multipart form", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, Response{Response: resp.Error("Invalid multipart form")})

			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		images, err := uploader.Upload(ctx, r.MultipartForm.File[formField])
		if err != nil {
			switch {
			case errors.Is(err, uploads.ErrNoFiles),
				errors.Is(err, uploads.ErrTooManyFiles),
				errors.Is(err, uploads.ErrFileTooLarge):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, Response{Response: resp.Error(err.Error())})
			default:
				log.Error("failed to upload images", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, Response{Response: resp.Error("Internal error")})
			}

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Success:  true,
			Images:   images,
		})
	}
}
