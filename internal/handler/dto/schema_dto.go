package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/schema"
)

type CreateSchemaRequest struct {
	Title       string         `json:"title" binding:"required,max=200"`
	Slug        *string        `json:"slug" binding:"omitempty,max=200"`
	Description *string        `json:"description"`
	Fields      []schema.Field `json:"fields" binding:"required,min=1,dive"`
}

type UpdateSchemaRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Slug        *string        `json:"slug" binding:"omitempty,max=200"`
	Description *string        `json:"description"`
	Fields      []schema.Field `json:"fields" binding:"omitempty,min=1,dive"`
}

type SchemaResponse struct {
	ID          uuid.UUID      `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Fields      []schema.Field `json:"fields"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewSchemaResponse(s *schema.Schema) SchemaResponse {
	fields, _ := s.Fields()
	if fields == nil {
		fields = []schema.Field{}
	}
	return SchemaResponse{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title,
		Description: s.Description,
		Fields:      fields,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
