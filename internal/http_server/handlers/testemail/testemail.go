package testemail

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

type Request struct {
	Subject      string `json:"subject"`
	TestEmail    string `json:"testEmail" validate:"required,email"`
	TemplateCode string `json:"templateCode"`
}

type Response struct {
	resp.Response
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg models.Message) error
}

// New sends a template's HTML to a single test address.
func New(log *slog.Logger, validate *validator.Validate, sender Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.testemail.New"

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

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		err := sender.Send(ctx, models.Message{
			Email:   req.TestEmail,
			Subject: req.Subject,
			Body:    req.TemplateCode,
			HTML:    true,
			Purpose: "test",
		})
		if err != nil {
			log.Error("failed to send test email", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, Response{Response: resp.Error("Error sending test email")})

			return
		}

		log.Info("test email sent")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Success:  true,
			Message:  "Test email sent successfully",
		})
	}
}
