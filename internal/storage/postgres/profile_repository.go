package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/makkenzo/content-cms-api/internal/domain/profile"
	"go.uber.org/zap"
)

type ProfileRepository struct {
	db     DB
	logger *zap.Logger
}

func NewProfileRepository(db DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger.Named("ProfileRepository"),
	}
}

var _ profile.Repository = (*ProfileRepository)(nil)

// FindOrCreate inserts the profile unless one with the same id exists, then returns the stored row.
func (r *ProfileRepository) FindOrCreate(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	insert := `
		INSERT INTO profiles (id, email, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	selectQuery := `SELECT id, email, name, role, created_at FROM profiles WHERE id = $1`

	var stored profile.Profile
	err := withRetry(ctx, func(ctx context.Context) error {
		cmdTag, err := r.db.Exec(ctx, insert, p.ID, p.Email, p.Name, p.Role, p.CreatedAt)
		if err != nil {
			return err
		}
		if cmdTag.RowsAffected() > 0 {
			r.logger.Info("Profile created", zap.String("id", p.ID.String()))
		}
		return pgxscan.Get(ctx, r.db, &stored, selectQuery, p.ID)
	})
	if err != nil {
		r.logger.Error("Failed to ensure profile", zap.String("id", p.ID.String()), zap.Error(err))
		return nil, storeError("ensure profile", err)
	}
	return &stored, nil
}
