package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/makkenzo/content-cms-api/internal/util"
	"go.uber.org/zap"
)

// slugRounds bounds how often a slug lost to a concurrent insert is re-allocated.
const slugRounds = 3

type SchemaService struct {
	repo     schema.Repository
	profiles *ProfileService
	now      func() time.Time
	logger   *zap.Logger
}

func NewSchemaService(repo schema.Repository, profiles *ProfileService, logger *zap.Logger) *SchemaService {
	return &SchemaService{
		repo:     repo,
		profiles: profiles,
		now:      time.Now,
		logger:   logger.Named("SchemaService"),
	}
}

func (s *SchemaService) CreateSchema(ctx context.Context, p *auth.Principal, req *dto.CreateSchemaRequest) (*schema.Schema, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ierr.ErrValidation)
	}
	if err := schema.CheckFields(req.Fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ierr.ErrValidation, err)
	}

	if _, err := s.profiles.EnsureProfile(ctx, p); err != nil {
		return nil, err
	}

	desired := title
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		desired = *req.Slug
	}

	now := s.now().UTC()
	sc := &schema.Schema{
		ID:          uuid.New(),
		OwnerID:     p.OwnerID,
		Title:       title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := sc.SetFields(req.Fields); err != nil {
		return nil, fmt.Errorf("encoding schema definition: %w", err)
	}

	err := s.withUniqueSlug(ctx, desired, func(slug string) error {
		sc.Slug = slug
		return s.repo.Create(ctx, sc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schema created", zap.String("id", sc.ID.String()), zap.String("slug", sc.Slug))
	return sc, nil
}

// withUniqueSlug allocates a slug and hands it to write. When write loses the slug to a
// concurrent writer the allocation is repeated.
func (s *SchemaService) withUniqueSlug(ctx context.Context, desired string, write func(slug string) error) error {
	for round := 1; ; round++ {
		slug, err := util.AllocateSlug(ctx, desired, s.repo.SlugExists)
		if err != nil {
			return err
		}
		err = write(slug)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ierr.ErrSlugTaken) || round >= slugRounds {
			return err
		}
		s.logger.Warn("Slug taken concurrently, reallocating", zap.String("slug", slug), zap.Int("round", round))
	}
}

func (s *SchemaService) ListSchemas(ctx context.Context, owner uuid.UUID) ([]*schema.Schema, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *SchemaService) GetSchema(ctx context.Context, owner, id uuid.UUID) (*schema.Schema, error) {
	return s.repo.FindByID(ctx, owner, id)
}

func (s *SchemaService) UpdateSchema(ctx context.Context, owner, id uuid.UUID, req *dto.UpdateSchemaRequest) (*schema.Schema, error) {
	sc, err := s.repo.FindByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ierr.ErrValidation)
		}
		sc.Title = title
	}
	if req.Description != nil {
		sc.Description = req.Description
	}
	if req.Fields != nil {
		if err := schema.CheckFields(req.Fields); err != nil {
			return nil, fmt.Errorf("%w: %w", ierr.ErrValidation, err)
		}
		if err := sc.SetFields(req.Fields); err != nil {
			return nil, fmt.Errorf("encoding schema definition: %w", err)
		}
	}
	sc.UpdatedAt = s.now().UTC()

	if req.Slug == nil || util.NormalizeSlug(*req.Slug) == sc.Slug {
		if err := s.repo.Update(ctx, sc); err != nil {
			return nil, err
		}
		return sc, nil
	}

	err = s.withUniqueSlug(ctx, *req.Slug, func(slug string) error {
		sc.Slug = slug
		return s.repo.Update(ctx, sc)
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// DeleteSchema removes the schema together with every collection built on it.
func (s *SchemaService) DeleteSchema(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return err
	}
	s.logger.Info("Schema deleted", zap.String("id", id.String()))
	return nil
}
