package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"freelance_service/internal/models"
	"freelance_service/internal/storage"
	"freelance_service/internal/storage/migrations"

	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Storage struct {
	db *sql.DB
}

// New opens (creating when needed) the database file at path and applies
// the embedded migrations.
func New(ctx context.Context, path string) (*Storage, error) {
	const op = "storage.sqlite.New"

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return nil, fmt.Errorf("%s: mkdir %s: %w", op, dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// a single connection serializes writers on the file
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an already migrated database.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Storage) AccountByEmailOrMobile(ctx context.Context, t models.AccountType, email, mobile string) (models.Account, error) {
	const op = "storage.sqlite.AccountByEmailOrMobile"

	acc, err := accountByEmailOrMobile(ctx, s.db, t, email, mobile)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Account{}, err
		}

		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc, nil
}

func accountByEmailOrMobile(ctx context.Context, q querier, t models.AccountType, email, mobile string) (models.Account, error) {
	table, err := storage.Table(t)
	if err != nil {
		return models.Account{}, err
	}

	// an exact email match wins over a mobile match so the caller can
	// report the duplicate email first
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE email = ? OR mobile_number = ?
		ORDER BY CASE WHEN email = ? THEN 0 ELSE 1 END
		LIMIT 1`, columns(t), table)

	return scanAccount(t, q.QueryRowContext(ctx, query, email, mobile, email))
}

func (s *Storage) Account(ctx context.Context, t models.AccountType, email string) (models.Account, error) {
	const op = "storage.sqlite.Account"

	table, err := storage.Table(t)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = ?`, columns(t), table)

	acc, err := scanAccount(t, s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Account{}, err
		}

		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc, nil
}

func (s *Storage) Accounts(ctx context.Context, t models.AccountType) ([]models.Account, error) {
	const op = "storage.sqlite.Accounts"

	table, err := storage.Table(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, columns(t), table))
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accounts, nil
}

func (s *Storage) EmailExists(ctx context.Context, t models.AccountType, email string) (bool, error) {
	return s.exists(ctx, t, "email", email)
}

func (s *Storage) MobileExists(ctx context.Context, t models.AccountType, mobile string) (bool, error) {
	return s.exists(ctx, t, "mobile_number", mobile)
}

func (s *Storage) exists(ctx context.Context, t models.AccountType, column, value string) (bool, error) {
	const op = "storage.sqlite.exists"

	table, err := storage.Table(t)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ?)`, table, column)
	if err := s.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// SaveAccount checks for a conflicting row and inserts acc in one
// transaction. The unique indexes catch anything the check misses.
func (s *Storage) SaveAccount(ctx context.Context, acc models.Account) (int64, error) {
	const op = "storage.sqlite.SaveAccount"

	table, err := storage.Table(acc.Type)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

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

	var res sql.Result

	switch acc.Type {
	case models.Client:
		res, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (first_name, last_name, company_name, email, mobile_number, address, password_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, table),
			acc.FirstName, acc.LastName, acc.CompanyName, acc.Email, acc.MobileNumber, acc.Address, string(acc.PassHash),
		)
	case models.Freelancer:
		res, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (first_name, last_name, date_of_birth, email, mobile_number, address, password_hash,
				skills, experiences, languages, educations, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table),
			acc.FirstName, acc.LastName, acc.DateOfBirth, acc.Email, acc.MobileNumber, acc.Address, string(acc.PassHash),
			acc.Skills, jsonText(acc.Experiences), acc.Languages, jsonText(acc.Educations), acc.Description,
		)
	}
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return 0, dup
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return id, nil
}

func (s *Storage) UpdatePassword(ctx context.Context, t models.AccountType, email string, passHash []byte) error {
	const op = "storage.sqlite.UpdatePassword"

	table, err := storage.Table(t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET password_hash = ? WHERE email = ?`, table), string(passHash), email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// uniqueViolation maps a UNIQUE constraint failure to the matching
// duplicate error, or returns nil for any other error.
func uniqueViolation(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}

	msg := sqliteErr.Error()
	code := sqliteErr.Code()

	if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
		!(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE")) {
		return nil
	}

	if strings.Contains(msg, ".mobile_number") {
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

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(t models.AccountType, row scanner) (models.Account, error) {
	acc := models.Account{Type: t}

	var (
		passHash                string
		experiences, educations string
		err                     error
	)

	if t == models.Freelancer {
		err = row.Scan(
			&acc.ID, &acc.Email, &acc.MobileNumber, &passHash, &acc.FirstName, &acc.LastName, &acc.DateOfBirth,
			&acc.Address, &acc.Skills, &experiences, &acc.Languages, &educations, &acc.Description,
		)
	} else {
		err = row.Scan(
			&acc.ID, &acc.Email, &acc.MobileNumber, &passHash, &acc.FirstName, &acc.LastName, &acc.CompanyName,
			&acc.Address,
		)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, storage.ErrUserNotFound
		}

		return models.Account{}, err
	}

	acc.PassHash = []byte(passHash)
	acc.Experiences = rawJSON(experiences)
	acc.Educations = rawJSON(educations)

	return acc, nil
}

func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}

	return string(raw)
}

func rawJSON(text string) []byte {
	if text == "" || text == "null" {
		return nil
	}

	return []byte(text)
}
