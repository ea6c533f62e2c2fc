package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/config"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

// SessionClaims are the claims carried by access tokens of the identity provider.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthService verifies session tokens issued by the identity provider. Tokens are HS256-signed
// with the shared project secret.
type AuthService struct {
	secret     []byte
	cookieName string
	parser     *jwt.Parser
	logger     *zap.Logger
}

func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	log := logger.Named("AuthService")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	log.Info("Session verification configured", zap.String("cookie", cfg.SessionCookie), zap.String("issuer", cfg.Issuer))
	return &AuthService{
		secret:     []byte(cfg.JWTSecret),
		cookieName: cfg.SessionCookie,
		parser:     jwt.NewParser(opts...),
		logger:     log,
	}, nil
}

func (s *AuthService) ValidateToken(_ context.Context, rawToken string) (*SessionClaims, error) {
	var claims SessionClaims
	_, err := s.parser.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ierr.ErrCredentialExpired, err)
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %w", ierr.ErrMalformedCredential, err)
		}
		s.logger.Debug("Failed to verify session token", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ierr.ErrCredentialNotFound, err)
	}
	return &claims, nil
}

// CurrentUser reads the session cookie. A request without one has no current user.
func (s *AuthService) CurrentUser(r *http.Request) (*auth.Identity, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	claims, err := s.ValidateToken(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ierr.ErrCredentialNotFound)
	}
	return &auth.Identity{ID: id, Email: claims.Email}, nil
}

var _ auth.IdentityProvider = (*AuthService)(nil)
