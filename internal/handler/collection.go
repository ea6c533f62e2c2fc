package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/collection"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/service"
	"go.uber.org/zap"
)

type CollectionHandler struct {
	service *service.CollectionService
	logger  *zap.Logger
}

func NewCollectionHandler(service *service.CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		service: service,
		logger:  logger.Named("CollectionHandler"),
	}
}

func (h *CollectionHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	col, err := h.service.CreateCollection(c.Request.Context(), p, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": col})
}

func (h *CollectionHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var q dto.CollectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	filter := collection.ListFilter{OwnerID: p.OwnerID}
	if q.SchemaID != "" {
		id := uuid.MustParse(q.SchemaID)
		filter.SchemaID = &id
	}
	if q.Published != "" {
		published := q.Published == "true"
		filter.Published = &published
	}

	list, err := h.service.ListCollections(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": list})
}

func (h *CollectionHandler) Get(c *gin.Context) {
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

	col, err := h.service.GetCollection(c.Request.Context(), p.OwnerID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": col})
}

func (h *CollectionHandler) Update(c *gin.Context) {
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

	var req dto.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	col, err := h.service.UpdateCollection(c.Request.Context(), p.OwnerID, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": col})
}

func (h *CollectionHandler) Delete(c *gin.Context) {
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

	if err := h.service.DeleteCollection(c.Request.Context(), p.OwnerID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted"})
}

func (h *CollectionHandler) ListItems(c *gin.Context) {
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

	items, err := h.service.ListItems(c.Request.Context(), p.OwnerID, id, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CollectionHandler) CreateItem(c *gin.Context) {
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

	item, err := h.service.CreateItem(c.Request.Context(), p, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *CollectionHandler) GetItem(c *gin.Context) {
	p, containerID, itemID, err := itemParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), p.OwnerID, containerID, itemID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *CollectionHandler) UpdateItem(c *gin.Context) {
	p, containerID, itemID, err := itemParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), p.OwnerID, containerID, itemID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *CollectionHandler) DeleteItem(c *gin.Context) {
	p, containerID, itemID, err := itemParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), p.OwnerID, containerID, itemID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection item deleted successfully"})
}

func itemParams(c *gin.Context) (p *auth.Principal, containerID, itemID uuid.UUID, err error) {
	if p, err = principal(c); err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	if containerID, err = pathID(c, "id"); err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	if itemID, err = pathID(c, "itemId"); err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	return p, containerID, itemID, nil
}
