package schema

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Schema) error
	FindByID(ctx context.Context, owner, id uuid.UUID) (*Schema, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*Schema, error)
	Update(ctx context.Context, s *Schema) error
	Delete(ctx context.Context, owner, id uuid.UUID) error
	// SlugExists checks the slug across every owner.
	SlugExists(ctx context.Context, slug string) (bool, error)
}
