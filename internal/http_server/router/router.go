package router

import (
	"log/slog"
	"net/http"
	"time"

	"freelance_service/internal/auth"
	"freelance_service/internal/http_server/handlers/check"
	"freelance_service/internal/http_server/handlers/images"
	"freelance_service/internal/http_server/handlers/login"
	otpHandlers "freelance_service/internal/http_server/handlers/otp"
	"freelance_service/internal/http_server/handlers/password"
	"freelance_service/internal/http_server/handlers/profile"
	"freelance_service/internal/http_server/handlers/register"
	"freelance_service/internal/http_server/handlers/segments"
	templateHandlers "freelance_service/internal/http_server/handlers/templates"
	"freelance_service/internal/http_server/handlers/testemail"
	"freelance_service/internal/middleware/bearer"
	"freelance_service/internal/middleware/deadline"
	rateLimit "freelance_service/internal/middleware/ratelimit"
	"freelance_service/internal/models"
	"freelance_service/internal/otp"
	"freelance_service/internal/templates"
	"freelance_service/internal/uploads"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

type Deps struct {
	Auth      *auth.Auth
	OTP       *otp.Service
	Mail      testemail.Sender
	Uploader  *uploads.Uploader
	Templates *templates.Service
	Segments  segments.Store
	Now       func() time.Time
}

const (
	uploadPath = "/imagesuploader"
	importPath = "/import-email-list"
)

type Options struct {
	CORSOrigins []string
	RateLimit   bool
	EchoOTP     bool
	// Timeout bounds reading and writing a request; UploadTimeout replaces it
	// on the upload routes. Zero leaves the server's limits in place.
	Timeout       time.Duration
	UploadTimeout time.Duration
	// UploadsDir is served under /uploads/ when set.
	UploadsDir    string
	MaxUploadBody int64
}

func New(log *slog.Logger, deps Deps, opts Options) *chi.Mux {
	validate := validator.New()

	if deps.Now == nil {
		deps.Now = time.Now
	}

	limit := func(l func() func(http.Handler) http.Handler) func(http.Handler) http.Handler {
		if !opts.RateLimit {
			return rateLimit.Noop()
		}
		return l()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(deadline.New(opts.Timeout, opts.UploadTimeout, uploadPath, importPath))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	for _, acc := range []struct {
		t                                  models.AccountType
		register, login, email, mobile, pw string
	}{
		{models.Client, "/clientregister", "/clientlogin", "/checkemail", "/checkmobileNumber", "/clientupdatepassword"},
		{models.Freelancer, "/freelancerregister", "/freelancerlogin", "/freelancercheckemail", "/freelancercheckmobileNumber", "/updatepassword"},
	} {
		r.With(limit(rateLimit.Register)).Post(acc.register, register.New(log, validate, deps.Auth, acc.t))
		r.With(limit(rateLimit.Login)).Post(acc.login, login.New(log, validate, deps.Auth, acc.t))
		r.With(limit(rateLimit.UpdatePassword)).Post(acc.pw, password.New(log, validate, deps.Auth, acc.t))
		r.Post(acc.email, check.Email(log, validate, deps.Auth, acc.t))
		r.Post(acc.mobile, check.Mobile(log, validate, deps.Auth, acc.t))
	}

	r.Group(func(r chi.Router) {
		r.Use(bearer.Require)

		r.Post("/getclientdata", profile.Own(log, deps.Auth, models.Client))
		r.Post("/getfreelancerdata", profile.Own(log, deps.Auth, models.Freelancer))
		r.Post("/getusersdata", profile.Others(log, deps.Auth))
	})

	r.With(limit(rateLimit.SendOTP)).Post("/sendotp", otpHandlers.Send(log, validate, deps.OTP, opts.EchoOTP))
	r.With(limit(rateLimit.VerifyOTP)).Post("/verifyotp", otpHandlers.Verify(log, validate, deps.OTP))
	r.With(limit(rateLimit.SendTestEmail)).Post("/send-test-email", testemail.New(log, validate, deps.Mail))

	r.With(limit(rateLimit.Upload)).Post(uploadPath, images.New(log, deps.Uploader, opts.MaxUploadBody))
	if opts.UploadsDir != "" {
		r.Get("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))).ServeHTTP)
	}

	r.Post("/save-client-data", segments.Save(log, validate, deps.Segments, deps.Now))
	r.Get("/fetch-client-data", segments.List(log, deps.Segments))
	r.With(limit(rateLimit.Upload)).Post(importPath, segments.Import(log, opts.MaxUploadBody))

	r.Post("/savecode", templateHandlers.Save(log, validate, deps.Templates))
	r.Get("/templates", templateHandlers.List(log, deps.Templates))
	r.Post("/duplicate", templateHandlers.Duplicate(log, validate, deps.Templates))
	r.Delete("/templatedelete/{id}", templateHandlers.Delete(log, deps.Templates))
	r.Get("/template/{id}", templateHandlers.Get(log, deps.Templates))
	r.Put("/template/{id}", templateHandlers.Update(log, validate, deps.Templates))

	return r
}
