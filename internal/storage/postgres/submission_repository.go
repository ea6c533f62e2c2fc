package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/makkenzo/content-cms-api/internal/domain/submission"
	"go.uber.org/zap"
)

var submissionColumns = []string{"id", "owner", "form_name", "form_data", "ip_address", "user_agent", "submitted_at"}

type SubmissionRepository struct {
	db     DB
	logger *zap.Logger
	now    func() time.Time
}

func NewSubmissionRepository(db DB, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger.Named("SubmissionRepository"),
		now:    time.Now,
	}
}

var _ submission.Repository = (*SubmissionRepository)(nil)

func (r *SubmissionRepository) Create(ctx context.Context, s *submission.Submission) error {
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = r.now().UTC()
	}
	query, args, err := squirrel.Insert("form_submissions").
		Columns(submissionColumns...).
		Values(s.ID, s.OwnerID, s.FormName, s.FormData, s.IPAddress, s.UserAgent, s.SubmittedAt).
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
		r.logger.Error("Failed to create form submission", zap.Error(err))
		return storeError("create form submission", err)
	}
	r.logger.Info("Form submission stored",
		zap.String("id", s.ID.String()),
		zap.String("form_name", s.FormName),
	)
	return nil
}

// List returns the owner's submissions, newest first. A zero limit falls back to DefaultLimit.
func (r *SubmissionRepository) List(ctx context.Context, filter submission.ListFilter) ([]*submission.Submission, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = submission.DefaultLimit
	}
	if limit > submission.MaxLimit {
		limit = submission.MaxLimit
	}

	qb := squirrel.Select(submissionColumns...).
		From("form_submissions").
		Where("owner = ?", filter.OwnerID).
		OrderBy("submitted_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if filter.FormName != "" {
		qb = qb.Where("form_name = ?", filter.FormName)
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	list := make([]*submission.Submission, 0)
	err = withRetry(ctx, func(ctx context.Context) error {
		list = list[:0]
		return pgxscan.Select(ctx, r.db, &list, query, args...)
	})
	if err != nil {
		r.logger.Error("Failed to list form submissions", zap.String("owner", filter.OwnerID.String()), zap.Error(err))
		return nil, storeError("list form submissions", err)
	}
	return list, nil
}
