package otp

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

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	code    string
	sendErr error
	ok      bool
	verErr  error
}

func (f *fakeService) RequestOTP(context.Context, string) (string, error) {
	return f.code, f.sendErr
}

func (f *fakeService) VerifyOTP(context.Context, string, string) (bool, error) {
	return f.ok, f.verErr
}

func call(t *testing.T, h http.HandlerFunc, body string) (int, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))

	var out Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return rec.Code, out
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend(t *testing.T) {
	svc := &fakeService{code: "123456"}

	code, out := call(t, Send(discard(), validator.New(), svc, true), `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.Success)
	assert.Equal(t, "123456", out.OTP)

	code, out = call(t, Send(discard(), validator.New(), svc, false), `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out.OTP)
}

func TestSend_Failures(t *testing.T) {
	code, out := call(t, Send(discard(), validator.New(), &fakeService{sendErr: errors.New("smtp down")}, true), `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Error sending OTP", out.Error)
	assert.False(t, out.Success)
	assert.Empty(t, out.OTP)

	code, _ = call(t, Send(discard(), validator.New(), &fakeService{}, true), `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		svc     *fakeService
		code    int
		success bool
		error   string
	}{
		{"match", `{"email":"a@x.com","otp":"123456"}`, &fakeService{ok: true}, http.StatusOK, true, ""},
		{"mismatch", `{"email":"a@x.com","otp":"000000"}`, &fakeService{}, http.StatusBadRequest, false, "Invalid OTP"},
		{"missing otp", `{"email":"a@x.com"}`, &fakeService{ok: true}, http.StatusBadRequest, false, "Invalid OTP"},
		{"store failure", `{"email":"a@x.com","otp":"1"}`, &fakeService{verErr: errors.New("redis down")}, http.StatusInternalServerError, false, "Internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := call(t, Verify(discard(), validator.New(), tt.svc), tt.body)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.success, out.Success)
			assert.Equal(t, tt.error, out.Error)
		})
	}
}
