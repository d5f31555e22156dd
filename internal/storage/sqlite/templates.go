package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"freelance_service/internal/models"
	"freelance_service/internal/storage"
)

func (s *Storage) SaveTemplate(ctx context.Context, tpl models.Template) (int64, error) {
	const op = "storage.sqlite.SaveTemplate"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sample_code_snippets (template_name, snippet, date, time) VALUES (?, ?, ?, ?)`,
		tpl.Name, tpl.Code, tpl.Date, tpl.Time,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) Templates(ctx context.Context) ([]models.Template, error) {
	const op = "storage.sqlite.Templates"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template_name, snippet, date, time FROM sample_code_snippets ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	templates := []models.Template{}

	for rows.Next() {
		var tpl models.Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Code, &tpl.Date, &tpl.Time); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return templates, nil
}

func (s *Storage) Template(ctx context.Context, id int64) (models.Template, error) {
	const op = "storage.sqlite.Template"

	var tpl models.Template

	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_name, snippet, date, time FROM sample_code_snippets WHERE id = ?`, id,
	).Scan(&tpl.ID, &tpl.Name, &tpl.Code, &tpl.Date, &tpl.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Template{}, storage.ErrTemplateNotFound
		}

		return models.Template{}, fmt.Errorf("%s: %w", op, err)
	}

	return tpl, nil
}

func (s *Storage) UpdateTemplate(ctx context.Context, tpl models.Template) error {
	const op = "storage.sqlite.UpdateTemplate"

	res, err := s.db.ExecContext(ctx,
		`UPDATE sample_code_snippets SET template_name = ?, snippet = ?, date = ?, time = ? WHERE id = ?`,
		tpl.Name, tpl.Code, tpl.Date, tpl.Time, tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return storage.ErrTemplateNotFound
	}

	return nil
}

func (s *Storage) DeleteTemplate(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteTemplate"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sample_code_snippets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) SaveSegment(ctx context.Context, seg models.Segment) (int64, error) {
	const op = "storage.sqlite.SaveSegment"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO client_data_listing (segment_name, email_list, created_date, created_time) VALUES (?, ?, ?, ?)`,
		seg.Name, strings.Join(seg.Emails, ","), seg.CreatedDate, seg.CreatedTime,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) Segments(ctx context.Context) ([]models.Segment, error) {
	const op = "storage.sqlite.Segments"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, segment_name, email_list, created_date, created_time FROM client_data_listing ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	segments := []models.Segment{}

	for rows.Next() {
		var (
			seg    models.Segment
			emails string
		)

		if err := rows.Scan(&seg.ID, &seg.Name, &emails, &seg.CreatedDate, &seg.CreatedTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		seg.Emails = storage.SplitEmailList(emails)
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return segments, nil
}
