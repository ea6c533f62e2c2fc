// Package auth resolves the owner behind a request, either from an API key or from a session
// issued by the identity provider.
package auth

import (
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/ierr"
)

type Method string

const (
	MethodSession Method = "session"
	MethodAPIKey  Method = "api_key"
)

// Principal is the outcome of a successful authentication.
type Principal struct {
	OwnerID uuid.UUID
	Method  Method
	// KeyID and Scopes are set for API-key principals only.
	KeyID  uuid.UUID
	Scopes []string
	Email  string
}

func (p *Principal) IsAPIKey() bool {
	return p.Method == MethodAPIKey
}

func (p *Principal) HasScope(scope string) bool {
	if p.Method == MethodSession {
		return true
	}
	return slices.Contains(p.Scopes, scope)
}

// Authenticator resolves a principal for r. required lists the scopes an API key must carry;
// sessions ignore it.
type Authenticator interface {
	Authenticate(r *http.Request, required []string) (*Principal, error)
}

// Identity is the user behind a session.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// IdentityProvider returns the current user for r, or nil when the request carries no session.
type IdentityProvider interface {
	CurrentUser(r *http.Request) (*Identity, error)
}

// Composite picks the API-key gate when the request has an Authorization header and the
// session gate otherwise.
type Composite struct {
	APIKey  Authenticator
	Session Authenticator
}

func (c Composite) Authenticate(r *http.Request, required []string) (*Principal, error) {
	if r.Header.Get(AuthorizationHeader) != "" {
		return c.APIKey.Authenticate(r, required)
	}
	return c.Session.Authenticate(r, required)
}

// Reason returns a short label for an authentication outcome, used in logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ierr.ErrMissingCredential):
		return "missing"
	case errors.Is(err, ierr.ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, ierr.ErrCredentialNotFound):
		return "not_found"
	case errors.Is(err, ierr.ErrCredentialInactive):
		return "inactive"
	case errors.Is(err, ierr.ErrCredentialExpired):
		return "expired"
	case errors.Is(err, ierr.ErrInsufficientScope):
		return "insufficient_scope"
	default:
		return "error"
	}
}
