package popup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TemplateType string

const (
	TemplateEmailCapture TemplateType = "email-capture"
	TemplateDiscount     TemplateType = "discount"
	TemplateNewsletter   TemplateType = "newsletter"
	TemplateExitIntent   TemplateType = "exit-intent"
	TemplateAnnouncement TemplateType = "announcement"
	TemplateCustom       TemplateType = "custom"
)

type DisplayRules struct {
	Delay     int      `json:"delay" binding:"gte=0,lte=300"`
	Pages     []string `json:"pages"`
	Trigger   string   `json:"trigger" binding:"omitempty,oneof=on-load exit-intent"`
	Frequency string   `json:"frequency" binding:"omitempty,oneof=once-per-session always once-per-user once-per-page"`
}

// DefaultDisplayRules are applied when a popup is created without rules.
func DefaultDisplayRules() DisplayRules {
	return DisplayRules{
		Delay:     0,
		Pages:     []string{"all"},
		Trigger:   "on-load",
		Frequency: "once-per-session",
	}
}

// WithDefaults fills zero-valued rule fields.
func (r DisplayRules) WithDefaults() DisplayRules {
	def := DefaultDisplayRules()
	if len(r.Pages) == 0 {
		r.Pages = def.Pages
	}
	if r.Trigger == "" {
		r.Trigger = def.Trigger
	}
	if r.Frequency == "" {
		r.Frequency = def.Frequency
	}
	return r
}

type Popup struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	OwnerID      uuid.UUID    `db:"owner" json:"owner"`
	Name         string       `db:"name" json:"name"`
	TemplateType TemplateType `db:"template_type" json:"template_type"`
	HTMLContent  string       `db:"html_content" json:"html_content"`
	DisplayRules DisplayRules `db:"display_rules" json:"display_rules"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

type Update struct {
	Name         *string
	TemplateType *TemplateType
	HTMLContent  *string
	DisplayRules *DisplayRules
	IsActive     *bool
}

type Repository interface {
	Create(ctx context.Context, p *Popup) error
	FindByID(ctx context.Context, owner, id uuid.UUID) (*Popup, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, activeOnly bool) ([]*Popup, error)
	Update(ctx context.Context, owner, id uuid.UUID, upd Update) (*Popup, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}
