package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"freelance_service/internal/config"
	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/mailer"
	"freelance_service/internal/models"
	"freelance_service/internal/rabbitmq"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadMailSender()
	log := setupLogger(cfg.Env)

	log.Info("Starting mail_sender", slog.String("env", cfg.Env))

	if err := run(ctx, cfg, log); err != nil {
		log.Error("consumer stopped", sl.Err(err))
		os.Exit(1)
	}

	log.Info("service gracefully stopped")
}

func run(ctx context.Context, cfg *config.MailSender, log *slog.Logger) error {
	r, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		return err
	}
	defer r.Close()

	m := mailer.New(cfg.SMTP, cfg.From)

	log.Info("consumer successfully started", slog.String("queue", cfg.RabbitMQ.QueueName))

	return r.Consume(ctx, func(ctx context.Context, msg models.Message) error {
		if err := m.Send(ctx, msg); err != nil {
			log.Error("failed to send message", slog.String("purpose", msg.Purpose), sl.Err(err))
			return err
		}

		log.Info("message sent successfully", slog.String("purpose", msg.Purpose))

		return nil
	})
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
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
