package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freelance_service/internal/config"
	"freelance_service/internal/models"
	"freelance_service/internal/storage"
	"freelance_service/internal/storage/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const uniqueViolationCode = "23505"

// pgxPool is the subset of *pgxpool.Pool the repository uses.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type PostgresRepo struct {
	pool pgxPool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pgPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	db := stdlib.OpenDBFromPool(pgPool)
	defer db.Close()

	if err := migrations.Up(ctx, db, goose.DialectPostgres); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresRepo{pool: pgPool}, nil
}

func (r *PostgresRepo) AccountByEmailOrMobile(ctx context.Context, t models.AccountType, email, mobile string) (models.Account, error) {
	const op = "storage.postgres.AccountByEmailOrMobile"

	acc, err := accountByEmailOrMobile(ctx, r.pool, t, email, mobile)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc, err
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func accountByEmailOrMobile(ctx context.Context, q queryRower, t models.AccountType, email, mobile string) (models.Account, error) {
	table, err := storage.Table(t)
	if err != nil {
		return models.Account{}, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE email = $1 OR mobile_number = $2
		ORDER BY (email = $1) DESC
		LIMIT 1;
	`, columns(t), table)

	return scanAccount(t, q.QueryRow(ctx, query, email, mobile))
}

func (r *PostgresRepo) Account(ctx context.Context, t models.AccountType, email string) (models.Account, error) {
	const op = "storage.postgres.Account"

	table, err := storage.Table(t)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1;`, columns(t), table)

	acc, err := scanAccount(t, r.pool.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc, err
}

func (r *PostgresRepo) Accounts(ctx context.Context, t models.AccountType) ([]models.Account, error) {
	const op = "storage.postgres.Accounts"

	table, err := storage.Table(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY id;`, columns(t), table))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var accounts []models.Account

	for rows.Next() {
		acc, err := scanAccount(t, rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		accounts = append(accounts, acc)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return accounts, nil
}

func (r *PostgresRepo) EmailExists(ctx context.Context, t models.AccountType, email string) (bool, error) {
	return r.exists(ctx, t, "email", email)
}

func (r *PostgresRepo) MobileExists(ctx context.Context, t models.AccountType, mobile string) (bool, error) {
	return r.exists(ctx, t, "mobile_number", mobile)
}

func (r *PostgresRepo) exists(ctx context.Context, t models.AccountType, column, value string) (bool, error) {
	const op = "storage.postgres.exists"

	table, err := storage.Table(t)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1);`, table, column)
	if err := r.pool.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *PostgresRepo) SaveAccount(ctx context.Context, acc models.Account) (int64, error) {
	const op = "storage.postgres.SaveAccount"

	table, err := storage.Table(acc.Type)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	existing, err := accountByEmailOrMobile(ctx, tx, acc.Type, acc.Email, acc.MobileNumber)
	switch {
	case err == nil:
		if existing.Email == acc.Email {
			return 0, storage.ErrEmailExists
		}

		return 0, storage.ErrMobileExists
	case !errors.Is(err, storage.ErrUserNotFound):
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64

	switch acc.Type {
	case models.Client:
		err = tx.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s (first_name, last_name, company_name, email, mobile_number, address, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;
		`, table),
			acc.FirstName, acc.LastName, acc.CompanyName, acc.Email, acc.MobileNumber, acc.Address, string(acc.PassHash),
		).Scan(&id)
	case models.Freelancer:
		err = tx.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s (first_name, last_name, date_of_birth, email, mobile_number, address, password_hash,
				skills, experiences, languages, educations, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id;
		`, table),
			acc.FirstName, acc.LastName, acc.DateOfBirth, acc.Email, acc.MobileNumber, acc.Address, string(acc.PassHash),
			acc.Skills, acc.Experiences, acc.Languages, acc.Educations, acc.Description,
		).Scan(&id)
	}
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return 0, dup
		}

		return 0, fmt.Errorf("%s: failed to save account: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return 0, dup
		}

		return 0, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, t models.AccountType, email string, passHash []byte) error {
	const op = "storage.postgres.UpdatePassword"

	table, err := storage.Table(t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET password_hash = $1 WHERE email = $2`, table), string(passHash), email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

// * uniqueViolation maps a unique constraint failure to the matching duplicate error.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}

	if strings.Contains(pgErr.ConstraintName, "mobile_number") {
		return storage.ErrMobileExists
	}

	return storage.ErrEmailExists
}

func columns(t models.AccountType) string {
	if t == models.Freelancer {
		return `id, email, mobile_number, password_hash, first_name, last_name, date_of_birth, address,
			skills, experiences, languages, educations, description`
	}

	return `id, email, mobile_number, password_hash, first_name, last_name, company_name, address`
}

func scanAccount(t models.AccountType, row pgx.Row) (models.Account, error) {
	acc := models.Account{Type: t}

	var (
		passHash string
		err      error
	)

	if t == models.Freelancer {
		err = row.Scan(
			&acc.ID, &acc.Email, &acc.MobileNumber, &passHash, &acc.FirstName, &acc.LastName, &acc.DateOfBirth,
			&acc.Address, &acc.Skills, &acc.Experiences, &acc.Languages, &acc.Educations, &acc.Description,
		)
	} else {
		err = row.Scan(
			&acc.ID, &acc.Email, &acc.MobileNumber, &passHash, &acc.FirstName, &acc.LastName, &acc.CompanyName,
			&acc.Address,
		)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrUserNotFound
		}

		return models.Account{}, err
	}

	acc.PassHash = []byte(passHash)

	return acc, nil
}

// * dsn builds the connection string from the postgres section of the config.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
