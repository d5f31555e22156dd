package check

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "freelance_service/internal/lib/api/response"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type MobileRequest struct {
	MobileNumber string `json:"mobileNumber" validate:"required"`
}

type Response struct {
	resp.Response
	Exists bool `json:"exists"`
}

type ExistenceChecker interface {
	EmailExists(ctx context.Context, t models.AccountType, email string) (bool, error)
	MobileExists(ctx context.Context, t models.AccountType, mobile string) (bool, error)
}

// Email reports whether an account of accountType already uses the email.
func Email(
	log *slog.Logger,
	validate *validator.Validate,
	checker ExistenceChecker,
	accountType models.AccountType,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EmailRequest

		handle(w, r, log.With(slog.String("op", "handlers.check.Email")), validate, &req, func(ctx context.Context) (bool, error) {
			return checker.EmailExists(ctx, accountType, req.Email)
		})
	}
}

// Mobile reports whether an account of accountType already uses the number.
func Mobile(
	log *slog.Logger,
	validate *validator.Validate,
	checker ExistenceChecker,
	accountType models.AccountType,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MobileRequest

		handle(w, r, log.With(slog.String("op", "handlers.check.Mobile")), validate, &req, func(ctx context.Context) (bool, error) {
			return checker.MobileExists(ctx, accountType, req.MobileNumber)
		})
	}
}

func handle(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	validate *validator.Validate,
	req any,
	exists func(ctx context.Context) (bool, error),
) {
	log = log.With(slog.String("request_id", middleware.GetReqID(r.Context())))

	if err := render.DecodeJSON(r.Body, req); err != nil {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := exists(ctx)
	if err != nil {
		log.Error("failed to check existence", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Internal error"))

		return
	}

	render.JSON(w, r, Response{
		Response: resp.OK(),
		Exists:   ok,
	})
}
