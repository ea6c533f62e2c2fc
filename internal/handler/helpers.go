package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/handler/middleware"
	"github.com/makkenzo/content-cms-api/internal/ierr"
)

// bindError keeps validator details reachable for the error handler.
func bindError(err error) error {
	return fmt.Errorf("%w: %w", ierr.ErrValidation, err)
}

func pathID(c *gin.Context, param string) (uuid.UUID, error) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s format", ierr.ErrValidation, param)
	}
	return id, nil
}

// principal returns the authenticated caller. Routes are always mounted behind Authenticate, so
// a missing principal is reported as a missing credential.
func principal(c *gin.Context) (*auth.Principal, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return nil, ierr.ErrMissingCredential
	}
	return p, nil
}
