package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

var collectionColumns = []string{"id", "owner", "schema_id", "data", "published", "created_at", "updated_at"}

type CollectionRepository struct {
	db     DB
	logger *zap.Logger
	now    func() time.Time
}

func NewCollectionRepository(db DB, logger *zap.Logger) *CollectionRepository {
	return &CollectionRepository{
		db:     db,
		logger: logger.Named("CollectionRepository"),
		now:    time.Now,
	}
}

var _ collection.Repository = (*CollectionRepository)(nil)

func (r *CollectionRepository) Create(ctx context.Context, c *collection.Collection) error {
	query, args, err := squirrel.Insert("collections").
		Columns(collectionColumns...).
		Values(c.ID, c.OwnerID, c.SchemaID, c.Data, c.Published, c.CreatedAt, c.UpdatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to create collection", zap.Error(err))
		return storeError("create collection", err)
	}
	r.logger.Info("Collection created successfully",
		zap.String("id", c.ID.String()),
		zap.String("schema_id", c.SchemaID.String()),
	)
	return nil
}

func (r *CollectionRepository) FindByID(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	return r.findOne(ctx, owner, id, false)
}

// FindPublished returns the collection only when it is published.
func (r *CollectionRepository) FindPublished(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	return r.findOne(ctx, owner, id, true)
}

func (r *CollectionRepository) findOne(ctx context.Context, owner, id uuid.UUID, publishedOnly bool) (*collection.Collection, error) {
	qb := squirrel.Select(collectionColumns...).
		From("collections").
		Where("id = ? AND owner = ?", id, owner).
		PlaceholderFormat(squirrel.Dollar)
	if publishedOnly {
		qb = qb.Where("published = TRUE")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var c collection.Collection
	err = withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &c, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("collection %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to find collection", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("find collection", err)
	}
	return &c, nil
}

func (r *CollectionRepository) List(ctx context.Context, filter collection.ListFilter) ([]*collection.Collection, error) {
	qb := squirrel.Select(collectionColumns...).
		From("collections").
		Where("owner = ?", filter.OwnerID).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if filter.SchemaID != nil {
		qb = qb.Where("schema_id = ?", *filter.SchemaID)
	}
	if filter.Published != nil {
		qb = qb.Where("published = ?", *filter.Published)
	}
	if filter.ExcludeID != nil {
		qb = qb.Where("id <> ?", *filter.ExcludeID)
	}
	if filter.ItemsOnly {
		qb = qb.Where("data <> '{}'::jsonb")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	list := make([]*collection.Collection, 0)
	err = withRetry(ctx, func(ctx context.Context) error {
		list = list[:0]
		return pgxscan.Select(ctx, r.db, &list, query, args...)
	})
	if err != nil {
		r.logger.Error("Failed to list collections", zap.String("owner", filter.OwnerID.String()), zap.Error(err))
		return nil, storeError("list collections", err)
	}
	return list, nil
}

func (r *CollectionRepository) Update(ctx context.Context, owner, id uuid.UUID, upd collection.Update) (*collection.Collection, error) {
	set := map[string]any{"updated_at": r.now().UTC()}
	if upd.Data != nil {
		set["data"] = upd.Data
	}
	if upd.Published != nil {
		set["published"] = *upd.Published
	}

	query, args, err := squirrel.Update("collections").
		SetMap(set).
		Where("id = ? AND owner = ?", id, owner).
		Suffix("RETURNING " + strings.Join(collectionColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	var c collection.Collection
	err = withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &c, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("collection %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to update collection", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("update collection", err)
	}
	return &c, nil
}

func (r *CollectionRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	query := `DELETE FROM collections WHERE id = $1 AND owner = $2`
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
		r.logger.Error("Failed to delete collection", zap.String("id", id.String()), zap.Error(err))
		return storeError("delete collection", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection %s: %w", id, ierr.ErrNotFound)
	}
	return nil
}
