package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitPrefix = "cms:ratelimit"

// NewRateLimitStore keeps counters in Redis so that every replica shares them. A nil client
// selects a process-local store.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), nil
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("creating rate limit store: %w", err)
	}
	return store, nil
}

// RateLimit limits requests per API key, falling back to the client IP before authentication.
// formatted uses the limiter notation, e.g. "120-M". Store failures let the request through.
func RateLimit(store limiter.Store, formatted string, logger *zap.Logger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("%w: rate %q: %w", ierr.ErrValidation, formatted, err)
	}
	log := logger.Named("RateLimit")

	mw := mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithKeyGetter(rateLimitKey),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.Info("Rate limit reached", zap.String("key", rateLimitKey(c)), zap.String("path", c.FullPath()))
			_ = c.Error(ierr.ErrRateLimited)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			log.Warn("Rate limit store unavailable, allowing request", zap.Error(err))
			c.Next()
		}),
	)
	return mw, nil
}

func rateLimitKey(c *gin.Context) string {
	if p := GetPrincipal(c); p != nil && p.IsAPIKey() {
		return "key:" + p.KeyID.String()
	}
	return "ip:" + c.ClientIP()
}
