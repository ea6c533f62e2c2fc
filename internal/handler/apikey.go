package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/service"
	"go.uber.org/zap"
)

const apiKeyCreatedMessage = "Store this key now. It will not be shown again."

type APIKeyHandler struct {
	service *service.APIKeyService
	logger  *zap.Logger
}

func NewAPIKeyHandler(service *service.APIKeyService, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		service: service,
		logger:  logger.Named("APIKeyHandler"),
	}
}

func (h *APIKeyHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind create api key request", zap.Error(err))
		_ = c.Error(bindError(err))
		return
	}

	key, plaintext, err := h.service.CreateAPIKey(c.Request.Context(), p.OwnerID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAPIKeyResponse{
		Data:    dto.NewAPIKeyResponse(key),
		APIKey:  plaintext,
		Message: apiKeyCreatedMessage,
	})
}

func (h *APIKeyHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	keys, err := h.service.ListAPIKeys(c.Request.Context(), p.OwnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.APIKeyListResponse{Data: make([]dto.APIKeyResponse, 0, len(keys))}
	for _, k := range keys {
		resp.Data = append(resp.Data, dto.NewAPIKeyResponse(k))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *APIKeyHandler) Update(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.UpdateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	key, err := h.service.UpdateAPIKey(c.Request.Context(), p.OwnerID, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.NewAPIKeyResponse(key)})
}

func (h *APIKeyHandler) Delete(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.DeleteAPIKey(c.Request.Context(), p.OwnerID, id); err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("API key deleted via handler", zap.String("id", id.String()))
	c.JSON(http.StatusOK, gin.H{"message": "API key deleted"})
}
