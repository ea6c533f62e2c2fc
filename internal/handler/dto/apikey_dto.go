package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
)

type CreateAPIKeyRequest struct {
	Description *string    `json:"description" binding:"omitempty,max=200"`
	Scopes      []string   `json:"scopes" binding:"omitempty,dive,oneof=read:collections write:collections read:popups write:popups"`
	ExpiresAt   *time.Time `json:"expires_at" binding:"omitempty,gt"`
}

type UpdateAPIKeyRequest struct {
	Active      *bool   `json:"active"`
	Description *string `json:"description" binding:"omitempty,max=200"`
}

// APIKeyResponse is the metadata view of a key. It never carries the secret or its digest.
type APIKeyResponse struct {
	ID          uuid.UUID  `json:"id"`
	KeyHint     string     `json:"key_hint"`
	Description string     `json:"description"`
	Scopes      []string   `json:"scopes"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

func NewAPIKeyResponse(k *apikey.APIKey) APIKeyResponse {
	scopes := k.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return APIKeyResponse{
		ID:          k.ID,
		KeyHint:     k.KeyHint,
		Description: k.Description,
		Scopes:      scopes,
		Active:      k.Active,
		ExpiresAt:   k.ExpiresAt,
		CreatedAt:   k.CreatedAt,
		LastUsedAt:  k.LastUsedAt,
	}
}

// CreateAPIKeyResponse is the only response that ever carries the plaintext key.
type CreateAPIKeyResponse struct {
	Data    APIKeyResponse `json:"data"`
	APIKey  string         `json:"api_key"`
	Message string         `json:"message"`
}

type APIKeyListResponse struct {
	Data []APIKeyResponse `json:"data"`
}
