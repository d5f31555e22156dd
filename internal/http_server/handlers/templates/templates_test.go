package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"freelance_service/internal/models"
	"freelance_service/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	tpls map[int64]models.Template
	err  error
}

func newFake() *fakeService {
	return &fakeService{tpls: map[int64]models.Template{
		1: {ID: 1, Name: "Welcome", Code: "<p>hi</p>"},
	}}
}

func (f *fakeService) Save(_ context.Context, tpl models.Template) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}

	tpl.ID = int64(len(f.tpls) + 1)
	f.tpls[tpl.ID] = tpl

	return tpl.ID, nil
}

func (f *fakeService) List(context.Context) ([]models.Template, error) {
	if f.err != nil {
		return nil, f.err
	}

	out := []models.Template{}
	for _, tpl := range f.tpls {
		out = append(out, tpl)
	}

	return out, nil
}

func (f *fakeService) Get(_ context.Context, id int64) (models.Template, error) {
	tpl, ok := f.tpls[id]
	if !ok {
		return models.Template{}, fmt.Errorf("templates.Get: %w", storage.ErrTemplateNotFound)
	}

	return tpl, nil
}

func (f *fakeService) Update(_ context.Context, tpl models.Template) error {
	if _, ok := f.tpls[tpl.ID]; !ok {
		return storage.ErrTemplateNotFound
	}

	f.tpls[tpl.ID] = tpl

	return nil
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}

	delete(f.tpls, id)

	return nil
}

func (f *fakeService) Duplicate(ctx context.Context, id int64) (models.Template, error) {
	tpl, err := f.Get(ctx, id)
	if err != nil {
		return models.Template{}, err
	}

	tpl.Name += " (Copy)"
	tpl.ID, _ = f.Save(ctx, tpl)

	return tpl, nil
}

func routes(svc Service) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate := validator.New()

	r := chi.NewRouter()
	r.Post("/savecode", Save(log, validate, svc))
	r.Get("/templates", List(log, svc))
	r.Post("/duplicate", Duplicate(log, validate, svc))
	r.Delete("/templatedelete/{id}", Delete(log, svc))
	r.Get("/template/{id}", Get(log, svc))
	r.Put("/template/{id}", Update(log, validate, svc))

	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return rec.Code, out
}

func TestGet(t *testing.T) {
	h := routes(newFake())

	code, out := do(t, h, http.MethodGet, "/template/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Welcome", out["name"])
	assert.Equal(t, "<p>hi</p>", out["code"])
	assert.Equal(t, true, out["success"])

	code, out = do(t, h, http.MethodGet, "/template/7", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Code snippet not found", out["error"])

	code, _ = do(t, h, http.MethodGet, "/template/x", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSaveAndDuplicate(t *testing.T) {
	svc := newFake()
	h := routes(svc)

	code, out := do(t, h, http.MethodPost, "/savecode", `{"templateName":"Promo","code":"<b>x</b>"}`)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, out["id"])

	code, _ = do(t, h, http.MethodPost, "/savecode", `{"code":"<b>x</b>"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = do(t, h, http.MethodPost, "/duplicate", `{"templateId":2}`)
	require.Equal(t, http.StatusOK, code)
	dup := out["duplicatedTemplate"].(map[string]any)
	assert.Equal(t, "Promo (Copy)", dup["templateName"])

	code, out = do(t, h, http.MethodPost, "/duplicate", `{"templateId":99}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Template not found", out["error"])
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newFake()
	h := routes(svc)

	code, _ := do(t, h, http.MethodPut, "/template/1", `{"templateName":"Renamed","code":"c"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", svc.tpls[1].Name)

	code, _ = do(t, h, http.MethodPut, "/template/5", `{"templateName":"Renamed"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, out := do(t, h, http.MethodDelete, "/templatedelete/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Template deleted successfully", out["message"])
	assert.Empty(t, svc.tpls)
}

func TestInternalErrorsAreRedacted(t *testing.T) {
	svc := newFake()
	svc.err = errors.New("database is locked")
	h := routes(svc)

	code, out := do(t, h, http.MethodGet, "/templates", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal error", out["error"])

	code, _ = do(t, h, http.MethodDelete, "/templatedelete/1", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}
