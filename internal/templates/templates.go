package templates

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	copySuffix = " (Copy)"
)

type Store interface {
	SaveTemplate(ctx context.Context, tpl models.Template) (int64, error)
	Templates(ctx context.Context) ([]models.Template, error)
	Template(ctx context.Context, id int64) (models.Template, error)
	UpdateTemplate(ctx context.Context, tpl models.Template) error
	DeleteTemplate(ctx context.Context, id int64) error
}

// Service manages saved email templates. Storage errors, including
// storage.ErrTemplateNotFound, are passed through wrapped.
type Service struct {
	log   *slog.Logger
	store Store
	now   func() time.Time
}

func New(log *slog.Logger, store Store) *Service {
	return &Service{
		log:   log,
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Save(ctx context.Context, tpl models.Template) (int64, error) {
	const op = "templates.Save"

	id, err := s.store.SaveTemplate(ctx, tpl)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("template saved", slog.String("op", op), slog.Int64("id", id))

	return id, nil
}

// List returns all templates, newest first.
func (s *Service) List(ctx context.Context) ([]models.Template, error) {
	const op = "templates.List"

	tpls, err := s.store.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tpls, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Template, error) {
	const op = "templates.Get"

	tpl, err := s.store.Template(ctx, id)
	if err != nil {
		return models.Template{}, fmt.Errorf("%s: %w", op, err)
	}

	return tpl, nil
}

func (s *Service) Update(ctx context.Context, tpl models.Template) error {
	const op = "templates.Update"

	if err := s.store.UpdateTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Delete removes the template. Deleting a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "templates.Delete"

	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Duplicate stores a copy of template id named "<name> (Copy)" and stamped
// with the current UTC date and local time.
func (s *Service) Duplicate(ctx context.Context, id int64) (models.Template, error) {
	const op = "templates.Duplicate"

	log := s.log.With(slog.String("op", op), slog.Int64("source_id", id))

	src, err := s.store.Template(ctx, id)
	if err != nil {
		return models.Template{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()

	dup := models.Template{
		Name: src.Name + copySuffix,
		Code: src.Code,
		Date: now.UTC().Format(dateLayout),
		Time: now.Format(timeLayout),
	}

	dup.ID, err = s.store.SaveTemplate(ctx, dup)
	if err != nil {
		log.Error("failed to save duplicate", sl.Err(err))

		return models.Template{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("template duplicated", slog.Int64("id", dup.ID))

	return dup, nil
}
