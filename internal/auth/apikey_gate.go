package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/makkenzo/content-cms-api/internal/util"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// KeyFinder looks up a key record by the digest of its plaintext.
type KeyFinder interface {
	FindByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error)
}

// APIKeyGate authenticates bearer API keys. It never writes to the store.
type APIKeyGate struct {
	keys   KeyFinder
	now    func() time.Time
	logger *zap.Logger
}

func NewAPIKeyGate(keys KeyFinder, logger *zap.Logger) *APIKeyGate {
	return &APIKeyGate{
		keys:   keys,
		now:    time.Now,
		logger: logger.Named("APIKeyGate"),
	}
}

func (g *APIKeyGate) Authenticate(r *http.Request, required []string) (*Principal, error) {
	return g.VerifyHeader(r.Context(), r.Header.Get(AuthorizationHeader), required)
}

// VerifyHeader checks a raw Authorization header value.
func (g *APIKeyGate) VerifyHeader(ctx context.Context, header string, required []string) (*Principal, error) {
	if header == "" {
		return g.reject(ierr.ErrMissingCredential, "")
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return g.reject(fmt.Errorf("%w: expected Bearer token", ierr.ErrMalformedCredential), "")
	}
	return g.VerifyToken(ctx, token, required)
}

// VerifyToken checks a bare plaintext key.
func (g *APIKeyGate) VerifyToken(ctx context.Context, token string, required []string) (*Principal, error) {
	if token == "" {
		return g.reject(ierr.ErrMissingCredential, "")
	}
	if !strings.HasPrefix(token, apikey.KeyPrefix) {
		return g.reject(fmt.Errorf("%w: unrecognized key format", ierr.ErrMalformedCredential), "")
	}

	// The unique index on key_hash is the comparison; only the digest ever reaches the store.
	key, err := g.keys.FindByHash(ctx, util.HashAPIKey(token))
	if err != nil {
		if errors.Is(err, ierr.ErrNotFound) {
			return g.reject(ierr.ErrCredentialNotFound, "")
		}
		g.logger.Error("API key lookup failed", zap.Error(err))
		observeDecision(MethodAPIKey, err)
		return nil, err
	}
	if !key.Active {
		return g.reject(ierr.ErrCredentialInactive, key.ID.String())
	}
	if key.Expired(g.now()) {
		return g.reject(ierr.ErrCredentialExpired, key.ID.String())
	}
	if !apikey.HasScopes(key.Scopes, required) {
		g.logger.Debug("API key lacks required scopes",
			zap.String("key_id", key.ID.String()),
			zap.Strings("granted", key.Scopes),
			zap.Strings("required", required),
		)
		return g.reject(ierr.ErrInsufficientScope, key.ID.String())
	}

	observeDecision(MethodAPIKey, nil)
	return &Principal{
		OwnerID: key.OwnerID,
		Method:  MethodAPIKey,
		KeyID:   key.ID,
		Scopes:  key.Scopes,
	}, nil
}

func (g *APIKeyGate) reject(err error, keyID string) (*Principal, error) {
	fields := []zap.Field{zap.String("reason", Reason(err))}
	if keyID != "" {
		fields = append(fields, zap.String("key_id", keyID))
	}
	g.logger.Info("API key rejected", fields...)
	observeDecision(MethodAPIKey, err)
	return nil, err
}
