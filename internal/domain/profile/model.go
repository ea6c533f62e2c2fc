package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const RoleUser = "user"

type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName derives a name from the email's local part.
func DisplayName(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "User"
}

type Repository interface {
	// FindOrCreate is idempotent: repeating it after a partial failure yields the same row.
	FindOrCreate(ctx context.Context, p *Profile) (*Profile, error)
}
