package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CreateCollectionRequest struct {
	SchemaID uuid.UUID `json:"schema_id" binding:"required"`
}

type UpdateCollectionRequest struct {
	Data      json.RawMessage `json:"data"`
	Published *bool           `json:"published"`
}

type CreateItemRequest struct {
	Data      json.RawMessage `json:"data" binding:"required"`
	Published *bool           `json:"published"`
}

// CollectionQuery carries the list filters accepted on collection listings.
type CollectionQuery struct {
	SchemaID  string `form:"schema_id" binding:"omitempty,uuid"`
	Published string `form:"published" binding:"omitempty,oneof=true false"`
}
