package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

// SessionGate trusts the identity provider fully: a session may act on everything its owner
// owns, so required scopes are not consulted.
type SessionGate struct {
	provider IdentityProvider
	logger   *zap.Logger
}

func NewSessionGate(provider IdentityProvider, logger *zap.Logger) *SessionGate {
	return &SessionGate{
		provider: provider,
		logger:   logger.Named("SessionGate"),
	}
}

func (g *SessionGate) Authenticate(r *http.Request, _ []string) (*Principal, error) {
	user, err := g.provider.CurrentUser(r)
	if err != nil {
		if errors.Is(err, ierr.ErrUnauthorized) {
			g.logger.Debug("Session rejected", zap.Error(err))
			observeDecision(MethodSession, err)
			return nil, err
		}
		g.logger.Warn("Session verification failed", zap.Error(err))
		err = fmt.Errorf("%w: %w", ierr.ErrCredentialNotFound, err)
		observeDecision(MethodSession, err)
		return nil, err
	}
	if user == nil {
		observeDecision(MethodSession, ierr.ErrMissingCredential)
		return nil, ierr.ErrMissingCredential
	}

	observeDecision(MethodSession, nil)
	return &Principal{
		OwnerID: user.ID,
		Method:  MethodSession,
		Email:   user.Email,
	}, nil
}
