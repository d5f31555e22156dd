package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"freelance_service/internal/auth"
	resp "freelance_service/internal/lib/api/response"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/middleware/bearer"
	"freelance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	models.Profile
}

type UsersResponse struct {
	resp.Response
	Users []models.Profile `json:"users"`
}

type Provider interface {
	Profile(ctx context.Context, t models.AccountType, token string) (models.Profile, error)
	OtherProfiles(ctx context.Context, token string) ([]models.Profile, error)
}

// Own returns the caller's profile from the accountType table. It runs
// behind bearer.Require.
func Own(log *slog.Logger, provider Provider, accountType models.AccountType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Own"

		log := log.With(
			slog.String("op", op),
			slog.String("account_type", string(accountType)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p, err := provider.Profile(ctx, accountType, bearer.Token(r.Context()))
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Profile:  p,
		})
	}
}

// Others lists every account except the caller's.
func Others(log *slog.Logger, provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Others"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		users, err := provider.OtherProfiles(ctx, bearer.Token(r.Context()))
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		render.JSON(w, r, UsersResponse{
			Response: resp.OK(),
			Users:    users,
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, resp.Error("Unauthorized"))
	case errors.Is(err, auth.ErrUserNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("User not found"))
	default:
		log.Error("failed to fetch profile data", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Internal error"))
	}
}
