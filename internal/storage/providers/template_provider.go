package providers

import (
	"context"
	"errors"
	"fmt"

	"evalboard/internal/domains"
	"evalboard/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TemplateProvider struct {
	db *pgxpool.Pool
}

func NewTemplateProvider(pg *pgxpool.Pool) *TemplateProvider {
	return &TemplateProvider{
		db: pg,
	}
}

func (s *TemplateProvider) SaveTemplate(ctx context.Context, template domains.TemplateCreate, ownerID int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO form_templates (
            owner_id, title, description, version, status,
            draft_schema_json, updated_at
         ) VALUES ($1,$2,$3,$4,$5,$6, NOW())`,
		ownerID, template.Title, template.Description, template.Version, "draft", template.Schema)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *TemplateProvider) GetAllTemplatesByOwner(ctx context.Context, ownerID int) ([]domains.Template, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, title, description, version, status,
                draft_schema_json, published_schema_json, updated_at, published_at
         FROM form_templates
         WHERE owner_id = $1
         ORDER BY updated_at DESC`, int64(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.Template])
}

func (s *TemplateProvider) GetTemplateById(ctx context.Context, ownerID int, templateID int) (domains.Template, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, title, description, version, status,
                draft_schema_json, published_schema_json, updated_at, published_at
         FROM form_templates
         WHERE id = $1 AND owner_id = $2`, templateID, ownerID)
	if err != nil {
		return domains.Template{}, err
	}
	defer rows.Close()

	template, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Template])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Template{}, storage.ErrNotFound
		}
		return domains.Template{}, err
	}
	return template, nil
}

// UpdateTemplate bumps the version and publishes the new schema. Assignments
// created earlier keep their frozen snapshots.
func (s *TemplateProvider) UpdateTemplate(ctx context.Context, templateID int, template domains.TemplateCreate, ownerID int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var existingID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM form_templates WHERE id = $1 AND owner_id = $2`,
		templateID, ownerID).Scan(&existingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx, `
        UPDATE form_templates
        SET title = $1,
            description = $2,
            version = version + 1,
            draft_schema_json = $3,
            published_schema_json = $3,
            published_at = NOW(),
            updated_at = NOW()
        WHERE id = $4 AND owner_id = $5`,
		template.Title, template.Description, template.Schema, existingID, ownerID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return tx.Commit(ctx)
}
