package register

import (
	"context"
	"encoding/json"
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

const successMessage = "Registration successful!"

// Request is the union of both account types' fields. Fields that do not
// apply to the registered type are ignored.
type Request struct {
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	CompanyName  string          `json:"companyName"`
	DateOfBirth  string          `json:"dateOfBirth"`
	Email        string          `json:"email" validate:"required,email"`
	MobileNumber string          `json:"mobileNumber" validate:"required"`
	Address      string          `json:"address"`
	Pass         string          `json:"password" validate:"required"`
	Skills       string          `json:"skills"`
	Experiences  json.RawMessage `json:"experiences"`
	Languages    string          `json:"languages"`
	Educations   json.RawMessage `json:"educations"`
	Description  string          `json:"description"`
}

type Response struct {
	resp.Response
	Message string `json:"message,omitempty"`
}

type Registrar interface {
	RegisterNewAccount(ctx context.Context, acc models.Account, pass string) (int64, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrar Registrar,
	accountType models.AccountType,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("account_type", string(accountType)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := registrar.RegisterNewAccount(ctx, req.account(accountType), req.Pass)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrDuplicateEmail):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Email already exists!"))
			case errors.Is(err, auth.ErrDuplicateMobile):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Mobile number already registered!"))
			default:
				log.Error("failed to register account", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("Account registered", slog.Int64("id", id))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  successMessage,
		})
	}
}

func (req Request) account(t models.AccountType) models.Account {
	acc := models.Account{
		Type:         t,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
	}

	switch t {
	case models.Client:
		acc.CompanyName = req.CompanyName
	case models.Freelancer:
		acc.DateOfBirth = req.DateOfBirth
		acc.Skills = req.Skills
		acc.Experiences = req.Experiences
		acc.Languages = req.Languages
		acc.Educations = req.Educations
		acc.Description = req.Description
	}

	return acc
}
