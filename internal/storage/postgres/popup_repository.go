package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/popup"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

var popupColumns = []string{"id", "owner", "name", "template_type", "html_content", "display_rules", "is_active", "created_at", "updated_at"}

type PopupRepository struct {
	db     DB
	logger *zap.Logger
	now    func() time.Time
}

func NewPopupRepository(db DB, logger *zap.Logger) *PopupRepository {
	return &PopupRepository{
		db:     db,
		logger: logger.Named("PopupRepository"),
		now:    time.Now,
	}
}

var _ popup.Repository = (*PopupRepository)(nil)

func (r *PopupRepository) Create(ctx context.Context, p *popup.Popup) error {
	query, args, err := squirrel.Insert("popups").
		Columns(popupColumns...).
		Values(p.ID, p.OwnerID, p.Name, p.TemplateType, p.HTMLContent, p.DisplayRules, p.IsActive, p.CreatedAt, p.UpdatedAt).
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
		r.logger.Error("Failed to create popup", zap.Error(err))
		return storeError("create popup", err)
	}
	r.logger.Info("Popup created successfully", zap.String("id", p.ID.String()))
	return nil
}

func (r *PopupRepository) FindByID(ctx context.Context, owner, id uuid.UUID) (*popup.Popup, error) {
	query := `SELECT ` + strings.Join(popupColumns, ", ") + ` FROM popups WHERE id = $1 AND owner = $2`

	var p popup.Popup
	err := withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &p, query, id, owner)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("popup %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to find popup", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("find popup", err)
	}
	return &p, nil
}

func (r *PopupRepository) ListByOwner(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]*popup.Popup, error) {
	qb := squirrel.Select(popupColumns...).
		From("popups").
		Where("owner = ?", owner).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if activeOnly {
		qb = qb.Where("is_active = TRUE")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	list := make([]*popup.Popup, 0)
	err = withRetry(ctx, func(ctx context.Context) error {
		list = list[:0]
		return pgxscan.Select(ctx, r.db, &list, query, args...)
	})
	if err != nil {
		r.logger.Error("Failed to list popups", zap.String("owner", owner.String()), zap.Error(err))
		return nil, storeError("list popups", err)
	}
	return list, nil
}

func (r *PopupRepository) Update(ctx context.Context, owner, id uuid.UUID, upd popup.Update) (*popup.Popup, error) {
	set := map[string]any{"updated_at": r.now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.TemplateType != nil {
		set["template_type"] = *upd.TemplateType
	}
	if upd.HTMLContent != nil {
		set["html_content"] = *upd.HTMLContent
	}
	if upd.DisplayRules != nil {
		set["display_rules"] = *upd.DisplayRules
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	query, args, err := squirrel.Update("popups").
		SetMap(set).
		Where("id = ? AND owner = ?", id, owner).
		Suffix("RETURNING " + strings.Join(popupColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	var p popup.Popup
	err = withRetry(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.db, &p, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("popup %s: %w", id, ierr.ErrNotFound)
		}
		r.logger.Error("Failed to update popup", zap.String("id", id.String()), zap.Error(err))
		return nil, storeError("update popup", err)
	}
	return &p, nil
}

func (r *PopupRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	query := `DELETE FROM popups WHERE id = $1 AND owner = $2`
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
		r.logger.Error("Failed to delete popup", zap.String("id", id.String()), zap.Error(err))
		return storeError("delete popup", err)
	}
	if affected == 0 {
		return fmt.Errorf("popup %s: %w", id, ierr.ErrNotFound)
	}
	return nil
}
