package segments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "freelance_service/internal/lib/api/response"
	"freelance_service/internal/lib/emaillist"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const importField = "file"

type Request struct {
	SegmentName string   `json:"segmentName" validate:"required"`
	EmailList   []string `json:"emailList" validate:"required,dive,email"`
	CreatedDate string   `json:"createdDate"`
	CreatedTime string   `json:"createdTime"`
}

type Response struct {
	resp.Response
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ListResponse struct {
	resp.Response
	Segments []models.Segment `json:"segments"`
}

type ImportResponse struct {
	resp.Response
	Success bool     `json:"success"`
	Emails  []string `json:"emails"`
}

type Store interface {
	SaveSegment(ctx context.Context, seg models.Segment) (int64, error)
	Segments(ctx context.Context) ([]models.Segment, error)
}

// Save stores a named mailing list. Missing creation stamps are filled in
// from now.
func Save(log *slog.Logger, validate *validator.Validate, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.segments.Save"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		seg := models.Segment{
			Name:        req.SegmentName,
			Emails:      req.EmailList,
			CreatedDate: req.CreatedDate,
			CreatedTime: req.CreatedTime,
		}

		t := now()
		if seg.CreatedDate == "" {
			seg.CreatedDate = t.Format("2006-01-02")
		}
		if seg.CreatedTime == "" {
			seg.CreatedTime = t.Format("15:04")
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := store.SaveSegment(ctx, seg)
		if err != nil {
			log.Error("failed to save segment", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, Response{Response: resp.Error("Error inserting client data")})

			return
		}

		log.Info("segment saved", slog.Int64("id", id), slog.Int("emails", len(seg.Emails)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK(),
			Success:  true,
			Message:  "Client data saved successfully",
		})
	}
}

func List(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.segments.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		segs, err := store.Segments(ctx)
		if err != nil {
			log.Error("failed to fetch segments", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Error fetching client data"))

			return
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Segments: segs})
	}
}

// Import extracts the addresses from an uploaded CSV or XLSX file in the
// multipart field "file". Nothing is stored.
func Import(log *slog.Logger, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.segments.Import"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		f, fh, err := r.FormFile(importField)
		if err != nil {
			log.Error("failed to read uploaded file", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ImportResponse{Response: resp.Error("File is required")})

			return
		}
		defer f.Close()

		emails, err := emaillist.Parse(fh.Filename, f)
		if err != nil {
			msg := "Invalid file"
			if errors.Is(err, emaillist.ErrUnsupportedFormat) {
				msg = "Only .csv and .xlsx files are supported"
			}

			log.Info("failed to parse email list", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ImportResponse{Response: resp.Error(msg)})

			return
		}

		log.Info("email list imported", slog.Int("emails", len(emails)))

		render.JSON(w, r, ImportResponse{
			Response: resp.OK(),
			Success:  true,
			Emails:   emails,
		})
	}
}
