package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"freelance_service/internal/models"
	"freelance_service/internal/storage"
	"freelance_service/internal/storage/migrations"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) *Storage {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	require.NoError(t, migrations.Up(context.Background(), db, goose.DialectSQLite3))

	return NewWithDB(db)
}

func client(email, mobile string) models.Account {
	return models.Account{
		Type:         models.Client,
		Email:        email,
		MobileNumber: mobile,
		PassHash:     []byte("$2a$10$hash"),
		FirstName:    "Ann",
		LastName:     "Lee",
		CompanyName:  "Acme",
		Address:      "Main st 1",
	}
}

func TestNew_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "edits.db")

	s, err := New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exists, err := s.EmailExists(context.Background(), models.Client, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveAccount_ThenAccount(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	id, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.Account(ctx, models.Client, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.Client, got.Type)
	assert.Equal(t, "111", got.MobileNumber)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, []byte("$2a$10$hash"), got.PassHash)
}

func TestSaveAccount_Freelancer_RoundTripsJSON(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	acc := models.Account{
		Type:         models.Freelancer,
		Email:        "f@x.com",
		MobileNumber: "222",
		PassHash:     []byte("h"),
		DateOfBirth:  "1990-01-01",
		Skills:       "go,sql",
		Experiences:  json.RawMessage(`[{"company":"Acme","years":2}]`),
		Languages:    "en",
		Description:  "backend",
	}

	_, err := s.SaveAccount(ctx, acc)
	require.NoError(t, err)

	got, err := s.Account(ctx, models.Freelancer, "f@x.com")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"company":"Acme","years":2}]`, string(got.Experiences))
	assert.Nil(t, got.Educations)
	assert.Equal(t, "1990-01-01", got.DateOfBirth)
	assert.Equal(t, "go,sql", got.Skills)
}

func TestSaveAccount_DuplicateEmail(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)

	_, err = s.SaveAccount(ctx, client("a@x.com", "999"))
	require.ErrorIs(t, err, storage.ErrEmailExists)

	all, err := s.Accounts(ctx, models.Client)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveAccount_DuplicateMobile(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)

	_, err = s.SaveAccount(ctx, client("b@x.com", "111"))
	require.ErrorIs(t, err, storage.ErrMobileExists)
}

func TestSaveAccount_EmailReportedBeforeMobile(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)
	_, err = s.SaveAccount(ctx, client("b@x.com", "222"))
	require.NoError(t, err)

	// mobile collides with the first row, email with the second
	_, err = s.SaveAccount(ctx, client("b@x.com", "111"))
	require.ErrorIs(t, err, storage.ErrEmailExists)
}

func TestSaveAccount_TablesAreIndependent(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)

	fr := client("a@x.com", "111")
	fr.Type = models.Freelancer
	_, err = s.SaveAccount(ctx, fr)
	require.NoError(t, err)
}

func TestSaveAccount_UniqueIndexBacksTheCheck(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients_data (email, mobile_number, password_hash) VALUES ('a@x.com', '111', 'h')`)
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients_data (email, mobile_number, password_hash) VALUES ('b@x.com', '111', 'h')`)
	require.Error(t, err)
	assert.ErrorIs(t, uniqueViolation(err), storage.ErrMobileExists)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients_data (email, mobile_number, password_hash) VALUES ('a@x.com', '222', 'h')`)
	require.Error(t, err)
	assert.ErrorIs(t, uniqueViolation(err), storage.ErrEmailExists)

	assert.Nil(t, uniqueViolation(errors.New("disk I/O error")))
}

func TestAccount_NotFound(t *testing.T) {
	s := setupStorage(t)

	_, err := s.Account(context.Background(), models.Freelancer, "ghost@x.com")
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestAccount_UnknownType(t *testing.T) {
	s := setupStorage(t)

	_, err := s.Account(context.Background(), models.AccountType("admin"), "a@x.com")
	require.ErrorIs(t, err, storage.ErrUnknownType)
}

func TestAccountByEmailOrMobile(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)

	got, err := s.AccountByEmailOrMobile(ctx, models.Client, "other@x.com", "111")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = s.AccountByEmailOrMobile(ctx, models.Client, "other@x.com", "000")
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestEmailAndMobileExists(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)

	ok, err := s.EmailExists(ctx, models.Client, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.EmailExists(ctx, models.Client, "A@x.com")
	require.NoError(t, err)
	assert.False(t, ok, "emails are compared as supplied")

	ok, err = s.MobileExists(ctx, models.Client, "111")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MobileExists(ctx, models.Freelancer, "111")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdatePassword(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveAccount(ctx, client("a@x.com", "111"))
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, models.Client, "a@x.com", []byte("new-hash")))

	got, err := s.Account(ctx, models.Client, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("new-hash"), got.PassHash)

	err = s.UpdatePassword(ctx, models.Client, "ghost@x.com", []byte("x"))
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestAccount_DBErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM clients_data WHERE email = \?`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("db down"))

	_, err = NewWithDB(db).Account(context.Background(), models.Client, "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserNotFound)
	assert.Regexp(t, regexp.MustCompile(`storage\.sqlite\.Account: db down`), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAccount_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .* FROM clients_data`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`(?s)INSERT INTO clients_data`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = NewWithDB(db).SaveAccount(context.Background(), client("a@x.com", "111"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}
