package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

const (
	schemaColumns        = `id, owner, slug, title, description, definition, created_at, updated_at`
	schemaSlugConstraint = "schemas_slug_key"
)

type SchemaRepository struct {
	db     DB
	logger *zap.Logger
}

func NewSchemaRepository(db DB, logger *zap.Logger) *SchemaRepository {
	return &SchemaRepository{
		db:     db,
		logger: logger.Named("SchemaRepository"),
	}
}

var _ schema.Repository = (*SchemaRepository)(nil)

// Create inserts the schema. A slug lost to a concurrent writer surfaces as ierr.ErrSlugTaken.
func (r *SchemaRepository) Create(ctx context.Context, s *schema.Schema) error {
	query := `
		INSERT INTO schemas (id, owner, slug, title, description, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			s.ID, s.OwnerID, s.Slug, s.Title, s.Description, s.Definition, s.CreatedAt, s.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, schemaSlugConstraint) {
			r.logger.Warn("Schema slug taken by concurrent insert", zap.String("slug", s.Slug))
			return fmt.Errorf("%w: %q", ierr.ErrSlugTaken, s.Slug)
		}
		r.logger.Error("Failed to create schema", zap.Error(err))
		return storeError("create schema", err)
	}
	r.logger.Info("Schema created successfully", zap.String("id", s.ID.String()), zap.String("slug", s.Slug))
	return nil
}

func (r *SchemaRepository) FindByID(ctx context.Context, owner, id uuid.UUID) (*schema.Schema, error) {
	query := `SELECT ` + schemaColumns + ` FROM schemas WHERE id = $1 AND owner = $2`

	var s schema.Schema
	err := withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &s, query, id, owner)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("schema %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to find schema", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("find schema", err)
	}
	return &s, nil
}

func (r *SchemaRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*schema.Schema, error) {
	query := `SELECT ` + schemaColumns + ` FROM schemas WHERE owner = $1 ORDER BY created_at DESC`

	list := make([]*schema.Schema, 0)
	err := withRetry(ctx, func(ctx context.Context) error {
		list = list[:0]
		return pgxscan.Select(ctx, r.db, &list, query, owner)
	})
	if err != nil {
		r.logger.Error("Failed to list schemas", zap.String("owner", owner.String()), zap.Error(err))
		return nil, storeError("list schemas", err)
	}
	return list, nil
}

func (r *SchemaRepository) Update(ctx context.Context, s *schema.Schema) error {
	query := `
		UPDATE schemas
		SET slug = $1, title = $2, description = $3, definition = $4, updated_at = $5
		WHERE id = $6 AND owner = $7
	`
	var affected int64
	err := withRetry(ctx, func(ctx context.Context) error {
		cmdTag, err := r.db.Exec(ctx, query, s.Slug, s.Title, s.Description, s.Definition, s.UpdatedAt, s.ID, s.OwnerID)
		if err != nil {
			return err
		}
		affected = cmdTag.RowsAffected()
		return nil
	})
	if err != nil {
		if isUniqueViolation(err, schemaSlugConstraint) {
			return fmt.Errorf("%w: %q", ierr.ErrSlugTaken, s.Slug)
		}
		r.logger.Error("Failed to update schema", zap.String("id", s.ID.String()), zap.Error(err))
		return storeError("update schema", err)
	}
	if affected == 0 {
		return fmt.Errorf("schema %s: %w", s.ID, ierr.ErrNotFound)
	}
	return nil
}

// Delete removes the schema; its collections go with it through the foreign key cascade.
func (r *SchemaRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	query := `DELETE FROM schemas WHERE id = $1 AND owner = $2`
	var affected int64
	err := withRetry(ctx, func(ctx context.Context) error {
		cmdTag, err := r.db.Exec(ctx, query, id, owner)
		if err != nil {
			return err
		}
		affected = cmdTag.RowsAffected()
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete schema", zap.String("id", id.String()), zap.Error(err))
		return storeError("delete schema", err)
	}
	if affected == 0 {
		return fmt.Errorf("schema %s: %w", id, ierr.ErrNotFound)
	}
	return nil
}

func (r *SchemaRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM schemas WHERE slug = $1)`
	var exists bool
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, slug).Scan(&exists)
	})
	if err != nil {
		return false, storeError("check slug", err)
	}
	return exists, nil
}
