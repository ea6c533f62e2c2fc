package dto

import (
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/popup"
)

type CreatePopupRequest struct {
	Name         string              `json:"name" binding:"required,min=2,max=200"`
	TemplateType popup.TemplateType  `json:"template_type" binding:"omitempty,oneof=email-capture discount newsletter exit-intent announcement custom"`
	HTMLContent  string              `json:"html_content"`
	DisplayRules *popup.DisplayRules `json:"display_rules"`
	IsActive     *bool               `json:"is_active"`
}

type UpdatePopupRequest struct {
	Name         *string             `json:"name" binding:"omitempty,min=2,max=200"`
	TemplateType *popup.TemplateType `json:"template_type" binding:"omitempty,oneof=email-capture discount newsletter exit-intent announcement custom"`
	HTMLContent  *string             `json:"html_content"`
	DisplayRules *popup.DisplayRules `json:"display_rules"`
	IsActive     *bool               `json:"is_active"`
}

// PublicPopup is what embedding pages receive; ownership and timestamps stay private.
type PublicPopup struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	TemplateType popup.TemplateType `json:"template_type"`
	HTMLContent  string             `json:"html_content"`
	DisplayRules popup.DisplayRules `json:"display_rules"`
}

type PublicPopupsResponse struct {
	Popups []PublicPopup `json:"popups"`
}

func NewPublicPopupsResponse(list []*popup.Popup) PublicPopupsResponse {
	out := make([]PublicPopup, 0, len(list))
	for _, p := range list {
		out = append(out, PublicPopup{
			ID:           p.ID,
			Name:         p.Name,
			TemplateType: p.TemplateType,
			HTMLContent:  p.HTMLContent,
			DisplayRules: p.DisplayRules,
		})
	}
	return PublicPopupsResponse{Popups: out}
}
