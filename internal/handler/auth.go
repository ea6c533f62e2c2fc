package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me reports the session user.
func (h *AuthHandler) Me(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{User: dto.UserResponse{
		ID:    p.OwnerID.String(),
		Email: p.Email,
	}})
}
