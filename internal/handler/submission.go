package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/service"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	service *service.SubmissionService
	logger  *zap.Logger
}

func NewSubmissionHandler(service *service.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.Named("SubmissionHandler"),
	}
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// ClientIP honours X-Forwarded-For and X-Real-IP from trusted proxies.
	origin := service.Origin{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	sub, err := h.service.CreateSubmission(c.Request.Context(), p, &req, origin)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

func (h *SubmissionHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var q dto.SubmissionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	resp, err := h.service.ListSubmissions(c.Request.Context(), p.OwnerID, &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
