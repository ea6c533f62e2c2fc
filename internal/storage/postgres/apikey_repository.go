package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

const apiKeyColumns = `id, owner, key_hash, key_hint, description, scopes, active, expires_at, created_at, last_used_at`

type APIKeyRepository struct {
	db     DB
	logger *zap.Logger
}

func NewAPIKeyRepository(db DB, logger *zap.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger.Named("APIKeyRepository"),
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

// FindByHash returns the key regardless of its active flag so callers can tell an inactive key
// from an unknown one.
func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1`

	var key apikey.APIKey
	err := withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &key, query, keyHash)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("API key not found by hash")
			return nil, fmt.Errorf("api key: %w", ierr.ErrNotFound)
		}
		r.logger.Error("Failed to find api key by hash", zap.Error(err))
		return nil, storeError("find api key by hash", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1 AND owner = $2`

	var key apikey.APIKey
	err := withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &key, query, id, owner)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("api key %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to find api key by id", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("find api key", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey) error {
	query := `
		INSERT INTO api_keys (id, owner, key_hash, key_hint, description, scopes, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			key.ID,
			key.OwnerID,
			key.KeyHash,
			key.KeyHint,
			key.Description,
			key.Scopes,
			key.Active,
			key.ExpiresAt,
			key.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, "api_keys_key_hash_key") {
			r.logger.Warn("API key digest collision", zap.String("id", key.ID.String()))
			return fmt.Errorf("%w: api key digest already exists", ierr.ErrConflict)
		}
		r.logger.Error("Failed to create api key in database", zap.Error(err))
		return storeError("create api key", err)
	}

	r.logger.Info("API key created successfully", zap.String("id", key.ID.String()), zap.String("owner", key.OwnerID.String()))
	return nil
}

func (r *APIKeyRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*apikey.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE owner = $1 ORDER BY created_at DESC`

	keys := make([]*apikey.APIKey, 0)
	err := withRetry(ctx, func(ctx context.Context) error {
		keys = keys[:0]
		return pgxscan.Select(ctx, r.db, &keys, query, owner)
	})
	if err != nil {
		r.logger.Error("Failed to list api keys", zap.String("owner", owner.String()), zap.Error(err))
		return nil, storeError("list api keys", err)
	}
	return keys, nil
}

func (r *APIKeyRepository) Update(ctx context.Context, owner, id uuid.UUID, upd apikey.Update) (*apikey.APIKey, error) {
	set := map[string]any{}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if len(set) == 0 {
		return r.FindByID(ctx, owner, id)
	}

	query, args, err := squirrel.Update("api_keys").
		SetMap(set).
		Where("id = ? AND owner = ?", id, owner).
		Suffix("RETURNING " + apiKeyColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	var key apikey.APIKey
	err = withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &key, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("api key %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to update api key", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("update api key", err)
	}
	return &key, nil
}

// Delete removes the key and returns the deleted row.
func (r *APIKeyRepository) Delete(ctx context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	query := `DELETE FROM api_keys WHERE id = $1 AND owner = $2 RETURNING ` + apiKeyColumns

	var key apikey.APIKey
	err := withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &key, query, id, owner)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("api key %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to delete api key", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("delete api key", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, lastUsed time.Time) error {
	query := `UPDATE api_keys SET last_used_at = GREATEST(COALESCE(last_used_at, $1), $1) WHERE id = $2`
	var affected int64
	err := withRetry(ctx, func(ctx context.Context) error {
		cmdTag, err := r.db.Exec(ctx, query, lastUsed, id)
		if err != nil {
			return err
		}
		affected = cmdTag.RowsAffected()
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to update api key last_used_at", zap.String("id", id.String()), zap.Error(err))
		return storeError("update last used", err)
	}
	if affected == 0 {
		r.logger.Warn("API key not found when updating last_used_at", zap.String("id", id.String()))
	}
	return nil
}

func (r *APIKeyRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]*apikey.APIKey, error) {
	query := `
		UPDATE api_keys SET active = FALSE
		WHERE active = TRUE AND expires_at IS NOT NULL AND expires_at < $1
		RETURNING ` + apiKeyColumns

	keys := make([]*apikey.APIKey, 0)
	err := withRetry(ctx, func(ctx context.Context) error {
		keys = keys[:0]
		return pgxscan.Select(ctx, r.db, &keys, query, now)
	})
	if err != nil {
		r.logger.Error("Failed to deactivate expired api keys", zap.Error(err))
		return nil, storeError("deactivate expired api keys", err)
	}
	return keys, nil
}
