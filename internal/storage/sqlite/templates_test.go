package sqlite

import (
	"context"
	"testing"

	"freelance_service/internal/models"
	"freelance_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_CRUD(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	first, err := s.SaveTemplate(ctx, models.Template{Name: "welcome", Code: "<h1>hi</h1>", Date: "2024-01-01", Time: "10:00"})
	require.NoError(t, err)
	second, err := s.SaveTemplate(ctx, models.Template{Name: "promo", Code: "<p>sale</p>", Date: "2024-01-02", Time: "11:00"})
	require.NoError(t, err)

	list, err := s.Templates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID, "newest first")
	assert.Equal(t, first, list[1].ID)

	got, err := s.Template(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "welcome", got.Name)
	assert.Equal(t, "<h1>hi</h1>", got.Code)

	require.NoError(t, s.UpdateTemplate(ctx, models.Template{ID: first, Name: "welcome v2", Code: "x", Date: "d", Time: "t"}))
	got, err = s.Template(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "welcome v2", got.Name)

	require.NoError(t, s.DeleteTemplate(ctx, first))
	require.NoError(t, s.DeleteTemplate(ctx, first), "delete is idempotent")

	_, err = s.Template(ctx, first)
	require.ErrorIs(t, err, storage.ErrTemplateNotFound)
}

func TestTemplates_EmptyListIsNotNil(t *testing.T) {
	s := setupStorage(t)

	list, err := s.Templates(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	s := setupStorage(t)

	err := s.UpdateTemplate(context.Background(), models.Template{ID: 404, Name: "x"})
	require.ErrorIs(t, err, storage.ErrTemplateNotFound)
}

func TestSegments_SaveAndList(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveSegment(ctx, models.Segment{
		Name:        "customers",
		Emails:      []string{"a@x.com", "b@x.com"},
		CreatedDate: "2024-01-01",
		CreatedTime: "09:30",
	})
	require.NoError(t, err)

	_, err = s.SaveSegment(ctx, models.Segment{Name: "empty"})
	require.NoError(t, err)

	list, err := s.Segments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "empty", list[0].Name)
	assert.Empty(t, list[0].Emails)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, list[1].Emails)
	assert.Equal(t, "09:30", list[1].CreatedTime)
}
