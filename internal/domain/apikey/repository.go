package apikey

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Update carries the mutable metadata of a key. Nil fields are left untouched.
type Update struct {
	Active      *bool
	Description *string
}

type Repository interface {
	FindByHash(ctx context.Context, keyHash string) (*APIKey, error)
	FindByID(ctx context.Context, owner, id uuid.UUID) (*APIKey, error)
	Create(ctx context.Context, key *APIKey) error
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*APIKey, error)
	Update(ctx context.Context, owner, id uuid.UUID, upd Update) (*APIKey, error)
	Delete(ctx context.Context, owner, id uuid.UUID) (*APIKey, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID, lastUsed time.Time) error
	DeactivateExpired(ctx context.Context, now time.Time) ([]*APIKey, error)
}
