package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/service"
	"go.uber.org/zap"
)

type PopupHandler struct {
	service *service.PopupService
	logger  *zap.Logger
}

func NewPopupHandler(service *service.PopupService, logger *zap.Logger) *PopupHandler {
	return &PopupHandler{
		service: service,
		logger:  logger.Named("PopupHandler"),
	}
}

func (h *PopupHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreatePopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	pp, err := h.service.CreatePopup(c.Request.Context(), p, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"popup": pp})
}

func (h *PopupHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	list, err := h.service.ListPopups(c.Request.Context(), p.OwnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"popups": list})
}

func (h *PopupHandler) Get(c *gin.Context) {
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

	pp, err := h.service.GetPopup(c.Request.Context(), p.OwnerID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"popup": pp})
}

func (h *PopupHandler) Update(c *gin.Context) {
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

	var req dto.UpdatePopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	pp, err := h.service.UpdatePopup(c.Request.Context(), p.OwnerID, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"popup": pp})
}

func (h *PopupHandler) Delete(c *gin.Context) {
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

	if err := h.service.DeletePopup(c.Request.Context(), p.OwnerID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Popup deleted"})
}
