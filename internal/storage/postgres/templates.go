package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freelance_service/internal/models"
	"freelance_service/internal/storage"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresRepo) SaveTemplate(ctx context.Context, tpl models.Template) (int64, error) {
	const op = "storage.postgres.SaveTemplate"

	query := `
		INSERT INTO sample_code_snippets (template_name, snippet, date, time)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query, tpl.Name, tpl.Code, tpl.Date, tpl.Time).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Templates(ctx context.Context) ([]models.Template, error) {
	const op = "storage.postgres.Templates"

	rows, err := r.pool.Query(ctx, `SELECT id, template_name, snippet, date, time FROM sample_code_snippets ORDER BY id DESC;`)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return templates, nil
}

func (r *PostgresRepo) Template(ctx context.Context, id int64) (models.Template, error) {
	const op = "storage.postgres.Template"

	var tpl models.Template

	err := r.pool.QueryRow(ctx,
		`SELECT id, template_name, snippet, date, time FROM sample_code_snippets WHERE id = $1;`, id,
	).Scan(&tpl.ID, &tpl.Name, &tpl.Code, &tpl.Date, &tpl.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Template{}, storage.ErrTemplateNotFound
		}

		return models.Template{}, fmt.Errorf("%s: %w", op, err)
	}

	return tpl, nil
}

func (r *PostgresRepo) UpdateTemplate(ctx context.Context, tpl models.Template) error {
	const op = "storage.postgres.UpdateTemplate"

	tag, err := r.pool.Exec(ctx,
		`UPDATE sample_code_snippets SET template_name = $1, snippet = $2, date = $3, time = $4 WHERE id = $5`,
		tpl.Name, tpl.Code, tpl.Date, tpl.Time, tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrTemplateNotFound
	}

	return nil
}

func (r *PostgresRepo) DeleteTemplate(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteTemplate"

	if _, err := r.pool.Exec(ctx, `DELETE FROM sample_code_snippets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) SaveSegment(ctx context.Context, seg models.Segment) (int64, error) {
	const op = "storage.postgres.SaveSegment"

	query := `
		INSERT INTO client_data_listing (segment_name, email_list, created_date, created_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, seg.Name, strings.Join(seg.Emails, ","), seg.CreatedDate, seg.CreatedTime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Segments(ctx context.Context) ([]models.Segment, error) {
	const op = "storage.postgres.Segments"

	rows, err := r.pool.Query(ctx,
		`SELECT id, segment_name, email_list, created_date, created_time FROM client_data_listing ORDER BY id DESC;`)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return segments, nil
}
