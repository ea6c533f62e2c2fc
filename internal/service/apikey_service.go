package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/makkenzo/content-cms-api/internal/util"
	"go.uber.org/zap"
)

type APIKeyService struct {
	repo   apikey.Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewAPIKeyService(repo apikey.Repository, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("APIKeyService"),
	}
}

// CreateAPIKey mints a key for owner and returns the stored record together with the plaintext.
// The plaintext is not kept anywhere and cannot be recovered later.
func (s *APIKeyService) CreateAPIKey(ctx context.Context, owner uuid.UUID, req *dto.CreateAPIKeyRequest) (*apikey.APIKey, string, error) {
	now := s.now().UTC()

	scopes := apikey.NormalizeScopes(req.Scopes)
	if len(scopes) == 0 {
		scopes = append([]string(nil), apikey.DefaultScopes...)
	}
	for _, sc := range scopes {
		if !apikey.IsKnownScope(sc) {
			return nil, "", fmt.Errorf("%w: unknown scope %q", ierr.ErrValidation, sc)
		}
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, "", fmt.Errorf("%w: expires_at must be in the future", ierr.ErrValidation)
	}

	description := apikey.DefaultDesc
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		description = strings.TrimSpace(*req.Description)
	}

	fullKey, hint, keyHash, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate api key components", zap.Error(err))
		return nil, "", fmt.Errorf("%w: failed generating key: %w", ierr.ErrInternalServer, err)
	}

	newKey := &apikey.APIKey{
		ID:          uuid.New(),
		OwnerID:     owner,
		KeyHash:     keyHash,
		KeyHint:     hint,
		Description: description,
		Scopes:      scopes,
		Active:      true,
		CreatedAt:   now,
	}
	if req.ExpiresAt != nil {
		exp := req.ExpiresAt.UTC()
		newKey.ExpiresAt = &exp
	}

	if err := s.repo.Create(ctx, newKey); err != nil {
		s.logger.Error("Failed to save new api key", zap.Error(err))
		return nil, "", fmt.Errorf("repository error creating api key: %w", err)
	}

	s.logger.Info("API key issued",
		zap.String("id", newKey.ID.String()),
		zap.String("owner", owner.String()),
		zap.Strings("scopes", scopes),
	)
	return newKey, fullKey, nil
}

func (s *APIKeyService) ListAPIKeys(ctx context.Context, owner uuid.UUID) ([]*apikey.APIKey, error) {
	keys, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("repository error listing api keys: %w", err)
	}
	s.logger.Debug("API keys listed", zap.String("owner", owner.String()), zap.Int("count", len(keys)))
	return keys, nil
}

func (s *APIKeyService) UpdateAPIKey(ctx context.Context, owner, id uuid.UUID, req *dto.UpdateAPIKeyRequest) (*apikey.APIKey, error) {
	if req.Active == nil && req.Description == nil {
		return nil, fmt.Errorf("%w: nothing to update", ierr.ErrValidation)
	}
	upd := apikey.Update{Active: req.Active}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if d == "" {
			d = apikey.DefaultDesc
		}
		upd.Description = &d
	}

	key, err := s.repo.Update(ctx, owner, id, upd)
	if err != nil {
		return nil, fmt.Errorf("repository error updating api key %s: %w", id, err)
	}
	if req.Active != nil {
		s.logger.Info("API key activation changed", zap.String("id", id.String()), zap.Bool("active", *req.Active))
	}
	return key, nil
}

func (s *APIKeyService) DeleteAPIKey(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("repository error deleting api key %s: %w", id, err)
	}
	s.logger.Info("API key deleted", zap.String("id", id.String()))
	return nil
}

// TouchAPIKey records a use of the key.
func (s *APIKeyService) TouchAPIKey(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.repo.UpdateLastUsed(ctx, id, at.UTC())
}

// DeactivateExpired flips active keys whose expiry has passed and reports how many were changed.
func (s *APIKeyService) DeactivateExpired(ctx context.Context) (int, error) {
	keys, err := s.repo.DeactivateExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("repository error deactivating expired api keys: %w", err)
	}
	for _, k := range keys {
		s.logger.Info("API key deactivated after expiry", zap.String("id", k.ID.String()), zap.String("owner", k.OwnerID.String()))
	}
	return len(keys), nil
}
