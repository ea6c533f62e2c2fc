package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/popup"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

type PopupService struct {
	repo   popup.Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewPopupService(repo popup.Repository, logger *zap.Logger) *PopupService {
	return &PopupService{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("PopupService"),
	}
}

func (s *PopupService) CreatePopup(ctx context.Context, p *auth.Principal, req *dto.CreatePopupRequest) (*popup.Popup, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", ierr.ErrValidation)
	}

	rules := popup.DefaultDisplayRules()
	if req.DisplayRules != nil {
		rules = req.DisplayRules.WithDefaults()
	}
	template := req.TemplateType
	if template == "" {
		template = popup.TemplateCustom
	}

	now := s.now().UTC()
	pp := &popup.Popup{
		ID:           uuid.New(),
		OwnerID:      p.OwnerID,
		Name:         name,
		TemplateType: template,
		HTMLContent:  req.HTMLContent,
		DisplayRules: rules,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.IsActive != nil {
		pp.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, pp); err != nil {
		return nil, err
	}
	s.logger.Info("Popup created", zap.String("id", pp.ID.String()), zap.String("via", string(p.Method)))
	return pp, nil
}

func (s *PopupService) ListPopups(ctx context.Context, owner uuid.UUID) ([]*popup.Popup, error) {
	return s.repo.ListByOwner(ctx, owner, false)
}

// ListActivePopups is what embedding pages see.
func (s *PopupService) ListActivePopups(ctx context.Context, owner uuid.UUID) ([]*popup.Popup, error) {
	return s.repo.ListByOwner(ctx, owner, true)
}

func (s *PopupService) GetPopup(ctx context.Context, owner, id uuid.UUID) (*popup.Popup, error) {
	return s.repo.FindByID(ctx, owner, id)
}

func (s *PopupService) UpdatePopup(ctx context.Context, owner, id uuid.UUID, req *dto.UpdatePopupRequest) (*popup.Popup, error) {
	upd := popup.Update{
		TemplateType: req.TemplateType,
		HTMLContent:  req.HTMLContent,
		IsActive:     req.IsActive,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: name must be at least 2 characters", ierr.ErrValidation)
		}
		upd.Name = &name
	}
	if req.DisplayRules != nil {
		rules := req.DisplayRules.WithDefaults()
		upd.DisplayRules = &rules
	}
	return s.repo.Update(ctx, owner, id, upd)
}

func (s *PopupService) DeletePopup(ctx context.Context, owner, id uuid.UUID) error {
	return s.repo.Delete(ctx, owner, id)
}
