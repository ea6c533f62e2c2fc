package submission

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Unknown stands in for a client address or agent the request did not carry.
const Unknown = "unknown"

type Submission struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     uuid.UUID       `db:"owner" json:"owner"`
	FormName    string          `db:"form_name" json:"form_name"`
	FormData    json.RawMessage `db:"form_data" json:"form_data"`
	IPAddress   string          `db:"ip_address" json:"ip_address"`
	UserAgent   string          `db:"user_agent" json:"user_agent"`
	SubmittedAt time.Time       `db:"submitted_at" json:"submitted_at"`
}

type ListFilter struct {
	OwnerID  uuid.UUID
	FormName string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, s *Submission) error
	List(ctx context.Context, filter ListFilter) ([]*Submission, error)
}
