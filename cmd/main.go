package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelance_service/internal/auth"
	"freelance_service/internal/config"
	"freelance_service/internal/http_server/handlers/segments"
	"freelance_service/internal/http_server/handlers/testemail"
	"freelance_service/internal/http_server/router"
	"freelance_service/internal/lib/jwt"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/mailer"
	"freelance_service/internal/otp"
	"freelance_service/internal/rabbitmq"
	"freelance_service/internal/storage/postgres"
	"freelance_service/internal/storage/redis"
	"freelance_service/internal/storage/sqlite"
	"freelance_service/internal/templates"
	"freelance_service/internal/uploads"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// uploadSlack covers multipart boundaries and headers on top of the file bytes.
const uploadSlack = 1 << 20

type store interface {
	auth.AccountSaver
	auth.AccountProvider
	templates.Store
	segments.Store
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting freelance service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Error("service failed", sl.Err(err))
		os.Exit(1)
	}

	log.Info("Main service stopped")
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	st, closeStorage, err := setupStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	otpStore, closeOTP, err := setupOTPStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeOTP()

	sender, closeSender, err := setupSender(cfg)
	if err != nil {
		return err
	}
	defer closeSender()

	objects, uploadsDir, err := setupUploads(ctx, cfg)
	if err != nil {
		return err
	}

	deps := router.Deps{
		Auth:      auth.New(log, st, st, jwt.NewIssuer(cfg.Session.Secret, cfg.Session.TTL)),
		OTP:       otp.New(log, otpStore, sender, cfg.OTP.TTL),
		Mail:      sender,
		Uploader:  uploads.NewUploader(log, objects, cfg.Uploads.MaxFiles, cfg.Uploads.MaxFileSize),
		Templates: templates.New(log, st),
		Segments:  st,
	}

	srv := &http.Server{
		Addr: cfg.HTTPServer.Address,
		Handler: router.New(log, deps, router.Options{
			CORSOrigins:   cfg.HTTPServer.CORSOrigins,
			RateLimit:     cfg.RateLimit.Enabled,
			EchoOTP:       cfg.OTP.EchoCode,
			Timeout:       cfg.HTTPServer.Timeout,
			UploadTimeout: cfg.HTTPServer.UploadTimeout,
			UploadsDir:    uploadsDir,
			MaxUploadBody: int64(cfg.Uploads.MaxFiles)*cfg.Uploads.MaxFileSize + uploadSlack,
		}),
		ReadHeaderTimeout: cfg.HTTPServer.Timeout,
		// per-route deadlines are tightened by the router
		ReadTimeout:  cfg.HTTPServer.UploadTimeout,
		WriteTimeout: cfg.HTTPServer.UploadTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	return nil
}

func setupStorage(ctx context.Context, cfg *config.Config) (store, func(), error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		s, err := sqlite.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func setupOTPStore(ctx context.Context, cfg *config.Config) (otp.Store, func(), error) {
	switch cfg.OTP.Store {
	case "memory":
		return otp.NewMemoryStore(), func() {}, nil
	case "redis":
		r, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown otp store %q", cfg.OTP.Store)
	}
}

func setupSender(cfg *config.Config) (testemail.Sender, func(), error) {
	switch cfg.Mail.Transport {
	case "smtp":
		return mailer.New(cfg.Mail.SMTP, cfg.Mail.From), func() {}, nil
	case "rabbitmq":
		r, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}

// setupUploads returns the object store and, for the local driver, the
// directory to serve under /uploads/.
func setupUploads(ctx context.Context, cfg *config.Config) (uploads.Store, string, error) {
	switch cfg.Uploads.Driver {
	case "local":
		s, err := uploads.NewLocalStore(cfg.Uploads.Dir, cfg.HTTPServer.PublicURL)
		if err != nil {
			return nil, "", fmt.Errorf("prepare uploads dir: %w", err)
		}
		return s, s.Dir(), nil
	case "s3":
		s, err := uploads.NewS3Store(ctx, cfg.Uploads.S3)
		if err != nil {
			return nil, "", fmt.Errorf("configure s3: %w", err)
		}
		return s, "", nil
	default:
		return nil, "", fmt.Errorf("unknown uploads driver %q", cfg.Uploads.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
