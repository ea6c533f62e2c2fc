package service

import (
	"context"
	"fmt"
	"time"

	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/profile"
	"go.uber.org/zap"
)

type ProfileService struct {
	repo   profile.Repository
	logger *zap.Logger
}

func NewProfileService(repo profile.Repository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger.Named("ProfileService"),
	}
}

// EnsureProfile makes sure the principal's owner has a profile row. It is safe to repeat.
func (s *ProfileService) EnsureProfile(ctx context.Context, p *auth.Principal) (*profile.Profile, error) {
	prof, err := s.repo.FindOrCreate(ctx, &profile.Profile{
		ID:        p.OwnerID,
		Email:     p.Email,
		Name:      profile.DisplayName(p.Email),
		Role:      profile.RoleUser,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to ensure profile", zap.String("owner", p.OwnerID.String()), zap.Error(err))
		return nil, fmt.Errorf("ensuring profile: %w", err)
	}
	return prof, nil
}
