// Package objectstore uploads media to the storage REST API of the hosting platform.
package objectstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/makkenzo/content-cms-api/internal/config"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

type Client struct {
	http    *resty.Client
	baseURL string
	bucket  string
	logger  *zap.Logger
}

func NewClient(cfg *config.StorageConfig, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	parsed, err := url.Parse(base)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("storage base URL must be absolute, got %q", cfg.BaseURL)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	client := resty.New().
		SetBaseURL(base+"/storage/v1").
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.ServiceKey).
		SetHeader("apikey", cfg.ServiceKey).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	client.AddRetryCondition(retryCondition)

	return &Client{
		http:    client,
		baseURL: base,
		bucket:  cfg.Bucket,
		logger:  logger.Named("ObjectStore"),
	}, nil
}

// Upload stores data under path in the configured bucket and returns its public URL. Existing
// objects at path are overwritten.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetPathParams(map[string]string{"bucket": c.bucket}).
		SetBody(data).
		Post("/object/{bucket}/" + escapePath(path))
	if err != nil {
		c.logger.Error("Upload request failed", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("%w: upload %s: %w", ierr.ErrUpstreamStore, path, err)
	}
	if resp.IsError() {
		c.logger.Error("Upload rejected by storage",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return "", fmt.Errorf("%w: upload %s: storage responded %d", ierr.ErrUpstreamStore, path, resp.StatusCode())
	}

	c.logger.Debug("Object uploaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return c.PublicURL(path), nil
}

func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, escapePath(path))
}

func escapePath(path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
