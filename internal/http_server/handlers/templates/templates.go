package templates

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	resp "freelance_service/internal/lib/api/response"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"
	"freelance_service/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	TemplateName string `json:"templateName" validate:"required"`
	Code         string `json:"code"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type DuplicateRequest struct {
	TemplateID int64 `json:"templateId" validate:"required"`
}

type Response struct {
	resp.Response
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type ListResponse struct {
	resp.Response
	Templates []models.Template `json:"templates"`
}

type GetResponse struct {
	resp.Response
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Name    string `json:"name"`
}

type DuplicateResponse struct {
	resp.Response
	Success            bool            `json:"success"`
	DuplicatedTemplate models.Template `json:"duplicatedTemplate"`
}

type Service interface {
	Save(ctx context.Context, tpl models.Template) (int64, error)
	List(ctx context.Context) ([]models.Template, error)
	Get(ctx context.Context, id int64) (models.Template, error)
	Update(ctx context.Context, tpl models.Template) error
	Delete(ctx context.Context, id int64) error
	Duplicate(ctx context.Context, id int64) (models.Template, error)
}

func Save(log *slog.Logger, validate *validator.Validate, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r, "handlers.templates.Save")

		var req Request
		if !decode(w, r, log, validate, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := svc.Save(ctx, req.template(0))
		if err != nil {
			internalError(w, r, log, "failed to save template", err)
			return
		}

		render.JSON(w, r, Response{Response: resp.OK(), Success: true, ID: id})
	}
}

func List(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r, "handlers.templates.List")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		tpls, err := svc.List(ctx)
		if err != nil {
			internalError(w, r, log, "failed to fetch templates", err)
			return
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Templates: tpls})
	}
}

func Get(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r, "handlers.templates.Get")

		id, ok := templateID(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		tpl, err := svc.Get(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrTemplateNotFound) {
				notFound(w, r, "Code snippet not found")
				return
			}

			internalError(w, r, log, "failed to fetch template", err)
			return
		}

		render.JSON(w, r, GetResponse{
			Response: resp.OK(),
			Success:  true,
			Code:     tpl.Code,
			Name:     tpl.Name,
		})
	}
}

func Update(log *slog.Logger, validate *validator.Validate, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r, "handlers.templates.Update")

		id, ok := templateID(w, r)
		if !ok {
			return
		}

		var req Request
		if !decode(w, r, log, validate, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := svc.Update(ctx, req.template(id)); err != nil {
			if errors.Is(err, storage.ErrTemplateNotFound) {
				notFound(w, r, "Template not found")
				return
			}

			internalError(w, r, log, "failed to update template", err)
			return
		}

		render.JSON(w, r, Response{Response: resp.OK(), Success: true})
	}
}

func Delete(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r, "handlers.templates.Delete")

		id, ok := templateID(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := svc.Delete(ctx, id); err != nil {
			internalError(w, r, log, "failed to delete template", err)
			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Success:  true,
			Message:  "Template deleted successfully",
		})
	}
}

func Duplicate(log *slog.Logger, validate *validator.Validate, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r, "handlers.templates.Duplicate")

		var req DuplicateRequest
		if !decode(w, r, log, validate, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dup, err := svc.Duplicate(ctx, req.TemplateID)
		if err != nil {
			if errors.Is(err, storage.ErrTemplateNotFound) {
				notFound(w, r, "Template not found")
				return
			}

			internalError(w, r, log, "failed to duplicate template", err)
			return
		}

		render.JSON(w, r, DuplicateResponse{
			Response:           resp.OK(),
			Success:            true,
			DuplicatedTemplate: dup,
		})
	}
}

func (req Request) template(id int64) models.Template {
	return models.Template{
		ID:   id,
		Name: req.TemplateName,
		Code: req.Code,
		Date: req.Date,
		Time: req.Time,
	}
}

func requestLogger(log *slog.Logger, r *http.Request, op string) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		log.Error("Failed to decode request body", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Failed to decode request"))

		return false
	}

	if err := validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.ValidationError(validateErr))

		return false
	}

	return true
}

func templateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Invalid template id"))

		return 0, false
	}

	return id, true
}

func notFound(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, Response{Response: resp.Error(msg)})
}

func internalError(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	log.Error(msg, sl.Err(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, Response{Response: resp.Error("Internal error")})
}
