package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/service"
	"go.uber.org/zap"
)

type SchemaHandler struct {
	service *service.SchemaService
	logger  *zap.Logger
}

func NewSchemaHandler(service *service.SchemaService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{
		service: service,
		logger:  logger.Named("SchemaHandler"),
	}
}

func (h *SchemaHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind create schema request", zap.Error(err))
		_ = c.Error(bindError(err))
		return
	}

	sc, err := h.service.CreateSchema(c.Request.Context(), p, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schema": dto.NewSchemaResponse(sc)})
}

func (h *SchemaHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	list, err := h.service.ListSchemas(c.Request.Context(), p.OwnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]dto.SchemaResponse, 0, len(list))
	for _, sc := range list {
		out = append(out, dto.NewSchemaResponse(sc))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *SchemaHandler) Get(c *gin.Context) {
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

	sc, err := h.service.GetSchema(c.Request.Context(), p.OwnerID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": dto.NewSchemaResponse(sc)})
}

func (h *SchemaHandler) Update(c *gin.Context) {
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

	var req dto.UpdateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	sc, err := h.service.UpdateSchema(c.Request.Context(), p.OwnerID, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": dto.NewSchemaResponse(sc)})
}

func (h *SchemaHandler) Delete(c *gin.Context) {
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

	if err := h.service.DeleteSchema(c.Request.Context(), p.OwnerID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schema deleted"})
}
