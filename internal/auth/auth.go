package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/lib/password"
	"freelance_service/internal/models"
	"freelance_service/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateMobile    = errors.New("mobile number already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
)

// dummyHash is compared against when no account matches so that an unknown
// email costs as much as a wrong password.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3sHBM7JFV2HQeX1tIyvQYyG")

type AccountSaver interface {
	SaveAccount(ctx context.Context, acc models.Account) (int64, error)
	UpdatePassword(ctx context.Context, t models.AccountType, email string, passHash []byte) error
}

type AccountProvider interface {
	Account(ctx context.Context, t models.AccountType, email string) (models.Account, error)
	AccountByEmailOrMobile(ctx context.Context, t models.AccountType, email, mobile string) (models.Account, error)
	Accounts(ctx context.Context, t models.AccountType) ([]models.Account, error)
	EmailExists(ctx context.Context, t models.AccountType, email string) (bool, error)
	MobileExists(ctx context.Context, t models.AccountType, mobile string) (bool, error)
}

type TokenIssuer interface {
	NewToken(email string) (string, error)
	Email(token string) (string, error)
}

type Auth struct {
	log         *slog.Logger
	accSaver    AccountSaver
	accProvider AccountProvider
	tokens      TokenIssuer
}

func New(
	log *slog.Logger,
	accountSaver AccountSaver,
	accountProvider AccountProvider,
	tokens TokenIssuer,
) *Auth {
	return &Auth{
		log:         log,
		accSaver:    accountSaver,
		accProvider: accountProvider,
		tokens:      tokens,
	}
}

// RegisterNewAccount stores acc with a hash of pass. It fails with
// ErrDuplicateEmail or ErrDuplicateMobile when the account's table already
// holds the email or the mobile number, the email taking precedence.
func (a *Auth) RegisterNewAccount(ctx context.Context, acc models.Account, pass string) (int64, error) {
	const op = "auth.RegisterNewAccount"

	log := a.log.With(
		slog.String("op", op),
		slog.String("account_type", string(acc.Type)),
	)

	log.Info("Registering new account")

	existing, err := a.accProvider.AccountByEmailOrMobile(ctx, acc.Type, acc.Email, acc.MobileNumber)
	switch {
	case err == nil:
		if existing.Email == acc.Email {
			log.Warn("Email already exists")

			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}

		log.Warn("Mobile number already registered")

		return 0, fmt.Errorf("%s: %w", op, ErrDuplicateMobile)
	case !errors.Is(err, storage.ErrUserNotFound):
		log.Error("Failed to check existing account", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := password.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	acc.PassHash = passHash

	id, err := a.accSaver.SaveAccount(ctx, acc)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailExists):
			log.Warn("Email already exists")

			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		case errors.Is(err, storage.ErrMobileExists):
			log.Warn("Mobile number already registered")

			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateMobile)
		}

		log.Error("Failed to save account", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("Account registered", slog.Int64("id", id))

	return id, nil
}

// Login checks the credentials against the account table of type t and
// returns a session token. An unknown email and a wrong password both
// yield ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, t models.AccountType, email, pass string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("account_type", string(t)),
	)

	acc, err := a.accProvider.Account(ctx, t, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			password.Verify(pass, dummyHash)

			log.Info("invalid credentials", slog.String("reason", "account not found"))

			return "", ErrInvalidCredentials
		}

		log.Error("failed to get account", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !password.Verify(pass, acc.PassHash) {
		log.Info("invalid credentials", slog.String("reason", "password mismatch"))

		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.NewToken(acc.Email)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("account logged in successfully", slog.Int64("id", acc.ID))

	return token, nil
}

func (a *Auth) UpdatePassword(ctx context.Context, t models.AccountType, email, newPass string) error {
	const op = "auth.UpdatePassword"

	log := a.log.With(
		slog.String("op", op),
		slog.String("account_type", string(t)),
	)

	if _, err := a.accProvider.Account(ctx, t, email); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("account not found")

			return ErrUserNotFound
		}

		log.Error("failed to get account", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := password.Hash(newPass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.accSaver.UpdatePassword(ctx, t, email, passHash); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}

		log.Error("failed to update password", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password updated")

	return nil
}

func (a *Auth) EmailExists(ctx context.Context, t models.AccountType, email string) (bool, error) {
	const op = "auth.EmailExists"

	exists, err := a.accProvider.EmailExists(ctx, t, email)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (a *Auth) MobileExists(ctx context.Context, t models.AccountType, mobile string) (bool, error) {
	const op = "auth.MobileExists"

	exists, err := a.accProvider.MobileExists(ctx, t, mobile)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// Authenticate returns the email carried by a valid session token.
func (a *Auth) Authenticate(token string) (string, error) {
	email, err := a.tokens.Email(token)
	if err != nil {
		a.log.Debug("rejected session token", slog.String("op", "auth.Authenticate"), sl.Err(err))

		return "", ErrUnauthorized
	}

	return email, nil
}

// Profile returns the caller's own profile from the table of type t.
func (a *Auth) Profile(ctx context.Context, t models.AccountType, token string) (models.Profile, error) {
	const op = "auth.Profile"

	email, err := a.Authenticate(token)
	if err != nil {
		return models.Profile{}, err
	}

	acc, err := a.accProvider.Account(ctx, t, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Profile{}, ErrUserNotFound
		}

		a.log.Error("failed to get account", slog.String("op", op), sl.Err(err))

		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc.Profile(), nil
}

// OtherProfiles lists every client and freelancer whose email differs from
// the caller's. Password hashes are never included.
func (a *Auth) OtherProfiles(ctx context.Context, token string) ([]models.Profile, error) {
	const op = "auth.OtherProfiles"

	email, err := a.Authenticate(token)
	if err != nil {
		return nil, err
	}

	profiles := []models.Profile{}

	for _, t := range []models.AccountType{models.Client, models.Freelancer} {
		accounts, err := a.accProvider.Accounts(ctx, t)
		if err != nil {
			a.log.Error("failed to list accounts", slog.String("op", op), sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		for _, acc := range accounts {
			if acc.Email == email {
				continue
			}

			profiles = append(profiles, acc.Profile())
		}
	}

	return profiles, nil
}
