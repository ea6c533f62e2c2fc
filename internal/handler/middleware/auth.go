package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"go.uber.org/zap"
)

const (
	principalContextKey = "principal"
	usageRecordTimeout  = 2 * time.Second
)

// UsageRecorder is notified after every successful API-key authentication.
type UsageRecorder interface {
	RecordUse(ctx context.Context, keyID uuid.UUID)
}

// Authenticate resolves the principal with authn and stores it in the context. scopes only
// constrain API keys. usage may be nil.
func Authenticate(authn auth.Authenticator, usage UsageRecorder, logger *zap.Logger, scopes ...string) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		p, err := authn.Authenticate(c.Request, scopes)
		if err != nil {
			log.Debug("Authentication failed", zap.String("path", c.FullPath()), zap.String("reason", auth.Reason(err)))
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(principalContextKey, p)

		if p.IsAPIKey() && usage != nil {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), usageRecordTimeout)
			usage.RecordUse(ctx, p.KeyID)
			cancel()
		}

		c.Next()
	}
}

// SetPrincipal stores p as the request's principal.
func SetPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(principalContextKey, p)
}

func GetPrincipal(c *gin.Context) *auth.Principal {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return nil
	}
	p, ok := value.(*auth.Principal)
	if !ok {
		return nil
	}
	return p
}
