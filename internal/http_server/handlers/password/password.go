package password

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"freelance_service/internal/auth"
	resp "freelance_service/internal/lib/api/response"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type Response struct {
	resp.Response
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, t models.AccountType, email, newPass string) error
}

// New handles a password change for an account of accountType identified by
// email alone.
// TODO: require a verified OTP or session token before changing the password.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	updater PasswordUpdater,
	accountType models.AccountType,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.password.New"

		log := log.With(
			slog.String("op", op),
			slog.String("account_type", string(accountType)),
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

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdatePassword(ctx, accountType, req.Email, req.NewPassword); err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			log.Error("failed to update password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Success:  true,
			Message:  "Password updated successfully",
		})
	}
}
