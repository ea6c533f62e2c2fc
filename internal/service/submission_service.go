package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/submission"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

type SubmissionService struct {
	repo   submission.Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewSubmissionService(repo submission.Repository, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("SubmissionService"),
	}
}

// Origin is the client a submission arrived from.
type Origin struct {
	IPAddress string
	UserAgent string
}

func (s *SubmissionService) CreateSubmission(ctx context.Context, p *auth.Principal, req *dto.CreateSubmissionRequest, origin Origin) (*submission.Submission, error) {
	name := strings.TrimSpace(req.FormName)
	if name == "" {
		return nil, fmt.Errorf("%w: form_name is required", ierr.ErrValidation)
	}
	data := bytes.TrimSpace(req.FormData)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return nil, fmt.Errorf("%w: form_data must be a JSON object", ierr.ErrValidation)
	}

	sub := &submission.Submission{
		ID:          uuid.New(),
		OwnerID:     p.OwnerID,
		FormName:    name,
		FormData:    json.RawMessage(data),
		IPAddress:   orUnknown(origin.IPAddress),
		UserAgent:   orUnknown(origin.UserAgent),
		SubmittedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("Form submission received", zap.String("id", sub.ID.String()), zap.String("form_name", name))
	return sub, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, owner uuid.UUID, q *dto.SubmissionQuery) (*dto.SubmissionListResponse, error) {
	filter := submission.ListFilter{
		OwnerID:  owner,
		FormName: strings.TrimSpace(q.FormName),
		Limit:    submission.DefaultLimit,
	}
	if q.Limit != nil {
		filter.Limit = min(*q.Limit, submission.MaxLimit)
	}
	if q.Offset != nil {
		filter.Offset = *q.Offset
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.SubmissionListResponse{
		Submissions: list,
		Total:       len(list),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}, nil
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return submission.Unknown
	}
	return v
}
