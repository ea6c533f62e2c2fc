package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/handler/middleware"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/makkenzo/content-cms-api/internal/service"
	"go.uber.org/zap"
)

// TokenVerifier checks a bare API key, as passed in a query string.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string, required []string) (*auth.Principal, error)
}

// PublicHandler serves content to API-key holders, always scoped to the key's owner.
type PublicHandler struct {
	collections *service.CollectionService
	popups      *service.PopupService
	verifier    TokenVerifier
	usage       middleware.UsageRecorder
	logger      *zap.Logger
}

func NewPublicHandler(
	collections *service.CollectionService,
	popups *service.PopupService,
	verifier TokenVerifier,
	usage middleware.UsageRecorder,
	logger *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		collections: collections,
		popups:      popups,
		verifier:    verifier,
		usage:       usage,
		logger:      logger.Named("PublicHandler"),
	}
}

type publicMeta struct {
	APIKeyID uuid.UUID `json:"api_key_id"`
}

// ListCollections returns published collections unless the caller passes published=false.
func (h *PublicHandler) ListCollections(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter := collection.ListFilter{OwnerID: p.OwnerID}
	if raw := c.Query("schema_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: invalid schema_id format", ierr.ErrValidation))
			return
		}
		filter.SchemaID = &id
	}
	if c.Query("published") != "false" {
		published := true
		filter.Published = &published
	}

	list, err := h.collections.ListCollections(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "meta": publicMeta{APIKeyID: p.KeyID}})
}

func (h *PublicHandler) GetCollection(c *gin.Context) {
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

	col, err := h.collections.GetPublishedCollection(c.Request.Context(), p.OwnerID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": col, "meta": publicMeta{APIKeyID: p.KeyID}})
}

func (h *PublicHandler) CreateItem(c *gin.Context) {
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

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	item, err := h.collections.CreateItem(c.Request.Context(), p, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item, "meta": publicMeta{APIKeyID: p.KeyID}})
}

// ListPopups is loaded by embedding scripts. It never fails: any problem with the key or the
// store yields an empty list.
func (h *PublicHandler) ListPopups(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	empty := dto.NewPublicPopupsResponse(nil)

	token := c.Query("key")
	if token == "" {
		c.JSON(http.StatusOK, empty)
		return
	}

	ctx := c.Request.Context()
	p, err := h.verifier.VerifyToken(ctx, token, []string{apikey.ScopeReadPopup})
	if err != nil {
		h.logger.Debug("Public popups requested with unusable key", zap.String("reason", auth.Reason(err)))
		c.JSON(http.StatusOK, empty)
		return
	}
	middleware.SetPrincipal(c, p)
	if h.usage != nil {
		h.usage.RecordUse(ctx, p.KeyID)
	}

	list, err := h.popups.ListActivePopups(ctx, p.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list public popups", zap.String("owner", p.OwnerID.String()), zap.Error(err))
		c.JSON(http.StatusOK, empty)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicPopupsResponse(list))
}
