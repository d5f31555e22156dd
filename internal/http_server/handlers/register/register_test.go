package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"freelance_service/internal/auth"
	"freelance_service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	err  error
	got  models.Account
	pass string
}

func (f *fakeRegistrar) RegisterNewAccount(_ context.Context, acc models.Account, pass string) (int64, error) {
	f.got = acc
	f.pass = pass

	return 1, f.err
}

func serve(t *testing.T, reg Registrar, accType models.AccountType, body string) (int, map[string]any) {
	t.Helper()

	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), validator.New(), reg, accType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return rec.Code, out
}

func TestRegister_Success_KeepsOnlyTypeFields(t *testing.T) {
	reg := &fakeRegistrar{}

	code, body := serve(t, reg, models.Client, `{
		"firstName":"Ann","email":"a@x.com","mobileNumber":"111","password":"pw",
		"companyName":"Acme","skills":"go"
	}`)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Registration successful!", body["message"])
	assert.Equal(t, models.Client, reg.got.Type)
	assert.Equal(t, "Acme", reg.got.CompanyName)
	assert.Empty(t, reg.got.Skills)
	assert.Equal(t, "pw", reg.pass)
}

func TestRegister_Freelancer(t *testing.T) {
	reg := &fakeRegistrar{}

	code, _ := serve(t, reg, models.Freelancer, `{
		"email":"f@x.com","mobileNumber":"1","password":"pw","companyName":"Acme",
		"skills":"go, sql","experiences":[{"company":"Acme"}]
	}`)

	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, reg.got.CompanyName)
	assert.Equal(t, "go, sql", reg.got.Skills)
	assert.JSONEq(t, `[{"company":"Acme"}]`, string(reg.got.Experiences))
}

func TestRegister_Errors(t *testing.T) {
	valid := `{"email":"a@x.com","mobileNumber":"111","password":"pw"}`

	tests := []struct {
		name    string
		body    string
		err     error
		code    int
		message string
	}{
		{"duplicate email", valid, auth.ErrDuplicateEmail, http.StatusBadRequest, "Email already exists!"},
		{"duplicate mobile", valid, auth.ErrDuplicateMobile, http.StatusBadRequest, "Mobile number already registered!"},
		{"storage failure", valid, errors.New("disk full"), http.StatusInternalServerError, "Internal error"},
		{"bad json", `{`, nil, http.StatusBadRequest, "Failed to decode request"},
		{"missing password", `{"email":"a@x.com","mobileNumber":"111"}`, nil, http.StatusBadRequest, "field Pass is a required field"},
		{"bad email", `{"email":"nope","mobileNumber":"111","password":"pw"}`, nil, http.StatusBadRequest, "field Email is not a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, &fakeRegistrar{err: tt.err}, models.Client, tt.body)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, body["error"])
		})
	}
}
