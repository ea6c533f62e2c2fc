package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

type CollectionService struct {
	repo     collection.Repository
	schemas  schema.Repository
	profiles *ProfileService
	now      func() time.Time
	logger   *zap.Logger
}

func NewCollectionService(repo collection.Repository, schemas schema.Repository, profiles *ProfileService, logger *zap.Logger) *CollectionService {
	return &CollectionService{
		repo:     repo,
		schemas:  schemas,
		profiles: profiles,
		now:      time.Now,
		logger:   logger.Named("CollectionService"),
	}
}

// CreateCollection creates an empty, unpublished container for one of the owner's schemas.
func (s *CollectionService) CreateCollection(ctx context.Context, p *auth.Principal, req *dto.CreateCollectionRequest) (*collection.Collection, error) {
	if _, err := s.profiles.EnsureProfile(ctx, p); err != nil {
		return nil, err
	}
	if _, err := s.schemas.FindByID(ctx, p.OwnerID, req.SchemaID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &collection.Collection{
		ID:        uuid.New(),
		OwnerID:   p.OwnerID,
		SchemaID:  req.SchemaID,
		Data:      collection.EmptyData(),
		Published: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CollectionService) ListCollections(ctx context.Context, filter collection.ListFilter) ([]*collection.Collection, error) {
	return s.repo.List(ctx, filter)
}

func (s *CollectionService) GetCollection(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	return s.repo.FindByID(ctx, owner, id)
}

func (s *CollectionService) GetPublishedCollection(ctx context.Context, owner, id uuid.UUID) (*collection.Collection, error) {
	return s.repo.FindPublished(ctx, owner, id)
}

func (s *CollectionService) UpdateCollection(ctx context.Context, owner, id uuid.UUID, req *dto.UpdateCollectionRequest) (*collection.Collection, error) {
	if req.Data == nil && req.Published == nil {
		return nil, fmt.Errorf("%w: nothing to update", ierr.ErrValidation)
	}

	upd := collection.Update{Published: req.Published}
	if req.Data != nil {
		current, err := s.repo.FindByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		if err := s.validateData(ctx, owner, current.SchemaID, req.Data); err != nil {
			return nil, err
		}
		upd.Data = req.Data
	}
	return s.repo.Update(ctx, owner, id, upd)
}

func (s *CollectionService) DeleteCollection(ctx context.Context, owner, id uuid.UUID) error {
	return s.repo.Delete(ctx, owner, id)
}

// ListItems returns the owner's collections that share the container's schema and carry data.
func (s *CollectionService) ListItems(ctx context.Context, owner, containerID uuid.UUID, published *bool) ([]*collection.Collection, error) {
	container, err := s.repo.FindByID(ctx, owner, containerID)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, collection.ListFilter{
		OwnerID:   owner,
		SchemaID:  &container.SchemaID,
		Published: published,
		ExcludeID: &container.ID,
		ItemsOnly: true,
	})
}

// CreateItem adds an item to the container after validating its data against the schema.
func (s *CollectionService) CreateItem(ctx context.Context, p *auth.Principal, containerID uuid.UUID, req *dto.CreateItemRequest) (*collection.Collection, error) {
	container, err := s.repo.FindByID(ctx, p.OwnerID, containerID)
	if err != nil {
		return nil, err
	}
	if err := s.validateData(ctx, p.OwnerID, container.SchemaID, req.Data); err != nil {
		return nil, err
	}
	if !(&collection.Collection{Data: req.Data}).HasData() {
		return nil, fmt.Errorf("%w: item data must not be empty", ierr.ErrValidation)
	}
	if !p.IsAPIKey() {
		if _, err := s.profiles.EnsureProfile(ctx, p); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	item := &collection.Collection{
		ID:        uuid.New(),
		OwnerID:   p.OwnerID,
		SchemaID:  container.SchemaID,
		Data:      req.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Published != nil {
		item.Published = *req.Published
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("Item created",
		zap.String("id", item.ID.String()),
		zap.String("container_id", containerID.String()),
		zap.String("via", string(p.Method)),
	)
	return item, nil
}

// GetItem returns an item that belongs to the container's schema.
func (s *CollectionService) GetItem(ctx context.Context, owner, containerID, itemID uuid.UUID) (*collection.Collection, error) {
	container, err := s.repo.FindByID(ctx, owner, containerID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if item.SchemaID != container.SchemaID || item.ID == container.ID || !item.HasData() {
		return nil, fmt.Errorf("item %s: %w", itemID, ierr.ErrNotFound)
	}
	return item, nil
}

func (s *CollectionService) UpdateItem(ctx context.Context, owner, containerID, itemID uuid.UUID, req *dto.UpdateCollectionRequest) (*collection.Collection, error) {
	item, err := s.GetItem(ctx, owner, containerID, itemID)
	if err != nil {
		return nil, err
	}
	if req.Data == nil && req.Published == nil {
		return nil, fmt.Errorf("%w: nothing to update", ierr.ErrValidation)
	}
	if req.Data != nil {
		if err := s.validateData(ctx, owner, item.SchemaID, req.Data); err != nil {
			return nil, err
		}
		if !(&collection.Collection{Data: req.Data}).HasData() {
			return nil, fmt.Errorf("%w: item data must not be empty", ierr.ErrValidation)
		}
	}
	return s.repo.Update(ctx, owner, itemID, collection.Update{Data: req.Data, Published: req.Published})
}

func (s *CollectionService) DeleteItem(ctx context.Context, owner, containerID, itemID uuid.UUID) error {
	if _, err := s.GetItem(ctx, owner, containerID, itemID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, owner, itemID)
}

func (s *CollectionService) validateData(ctx context.Context, owner, schemaID uuid.UUID, data []byte) error {
	sc, err := s.schemas.FindByID(ctx, owner, schemaID)
	if err != nil {
		if errors.Is(err, ierr.ErrNotFound) {
			return fmt.Errorf("%w: schema of collection no longer exists", ierr.ErrConflict)
		}
		return err
	}
	if err := sc.ValidateData(data); err != nil {
		return fmt.Errorf("%w: %w", ierr.ErrValidation, err)
	}
	return nil
}
