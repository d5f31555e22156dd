package otp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "freelance_service/internal/lib/api/response"
	sl "freelance_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type SendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type Response struct {
	resp.Response
	Success bool   `json:"success"`
	OTP     string `json:"otp,omitempty"`
}

type Service interface {
	RequestOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (bool, error)
}

// Send mails a fresh code to the requested address. With echoCode set the
// code is also returned in the response body.
func Send(log *slog.Logger, validate *validator.Validate, svc Service, echoCode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.otp.Send"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SendRequest

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

		code, err := svc.RequestOTP(ctx, req.Email)
		if err != nil {
			log.Error("failed to send otp", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, Response{Response: resp.Error("Error sending OTP")})

			return
		}

		res := Response{Response: resp.OK(), Success: true}
		if echoCode {
			res.OTP = code
		}

		render.JSON(w, r, res)
	}
}

func Verify(log *slog.Logger, validate *validator.Validate, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.otp.Verify"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req VerifyRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, Response{Response: resp.Error("Failed to decode request")})

			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, Response{Response: resp.Error("Invalid OTP")})

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		ok, err := svc.VerifyOTP(ctx, req.Email, req.OTP)
		if err != nil {
			log.Error("failed to verify otp", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, Response{Response: resp.Error("Internal error")})

			return
		}

		if !ok {
			log.Info("otp rejected")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, Response{Response: resp.Error("Invalid OTP")})

			return
		}

		render.JSON(w, r, Response{Response: resp.OK(), Success: true})
	}
}
