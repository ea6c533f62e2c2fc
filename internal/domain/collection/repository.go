package collection

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Collection) error
	FindByID(ctx context.Context, owner, id uuid.UUID) (*Collection, error)
	FindPublished(ctx context.Context, owner, id uuid.UUID) (*Collection, error)
	List(ctx context.Context, filter ListFilter) ([]*Collection, error)
	Update(ctx context.Context, owner, id uuid.UUID, upd Update) (*Collection, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}
