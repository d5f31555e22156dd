package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"
)

var ErrOTPNotFound = errors.New("otp not found")

const (
	subject  = "OTP for Email Verification"
	bodyTmpl = "Your OTP for email verification is: %s"
)

// Store keeps at most one pending code per email. Expired entries behave as
// absent.
type Store interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume deletes the entry and reports true only when code matches it.
	// A mismatch leaves the entry in place.
	Consume(ctx context.Context, email, code string) (bool, error)
}

type Sender interface {
	Send(ctx context.Context, msg models.Message) error
}

type Service struct {
	log    *slog.Logger
	store  Store
	sender Sender
	ttl    time.Duration
}

func New(log *slog.Logger, store Store, sender Sender, ttl time.Duration) *Service {
	return &Service{
		log:    log,
		store:  store,
		sender: sender,
		ttl:    ttl,
	}
}

// RequestOTP stores a fresh six digit code for email, replacing any pending
// one, and mails it. The code is dropped again when the mail cannot be sent,
// unless a newer request has replaced it meanwhile.
func (s *Service) RequestOTP(ctx context.Context, email string) (string, error) {
	const op = "otp.RequestOTP"

	log := s.log.With(slog.String("op", op))

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Save(ctx, email, code, s.ttl); err != nil {
		log.Error("failed to store otp", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	msg := models.Message{
		Email:   email,
		Subject: subject,
		Body:    fmt.Sprintf(bodyTmpl, code),
		Purpose: "otp",
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		log.Error("failed to send otp", sl.Err(err))

		if _, delErr := s.store.Consume(ctx, email, code); delErr != nil {
			log.Warn("failed to drop unsent otp", sl.Err(delErr))
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("otp sent")

	return code, nil
}

// VerifyOTP reports whether code is the pending code for email. A match
// consumes the code so it verifies only once.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	const op = "otp.VerifyOTP"

	ok, err := s.store.Consume(ctx, email, code)
	if err != nil {
		s.log.Error("failed to check otp", slog.String("op", op), sl.Err(err))

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// generateCode returns a number in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
