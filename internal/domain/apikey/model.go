package apikey

import (
	"time"

	"github.com/google/uuid"
)

type APIKey struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OwnerID     uuid.UUID  `db:"owner" json:"owner"`
	KeyHash     string     `db:"key_hash" json:"-"`
	KeyHint     string     `db:"key_hint" json:"key_hint"`
	Description string     `db:"description" json:"description"`
	Scopes      []string   `db:"scopes" json:"scopes"`
	Active      bool       `db:"active" json:"active"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	LastUsedAt  *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
}

const (
	// KeyPrefix marks every plaintext secret issued by this service.
	KeyPrefix       = "cms_"
	SecretBytes     = 32
	KeyHintLength   = 12
	DefaultDesc     = "No description"
	ScopeReadColl   = "read:collections"
	ScopeWriteColl  = "write:collections"
	ScopeReadPopup  = "read:popups"
	ScopeWritePopup = "write:popups"
)

var DefaultScopes = []string{ScopeReadColl}

var knownScopes = map[string]struct{}{
	ScopeReadColl:   {},
	ScopeWriteColl:  {},
	ScopeReadPopup:  {},
	ScopeWritePopup: {},
}

func IsKnownScope(scope string) bool {
	_, ok := knownScopes[scope]
	return ok
}

// Expired reports whether the key's expiry lies strictly before now.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}

// HasScopes reports whether granted is a superset of required. An empty requirement is
// satisfied by any key.
func HasScopes(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		set[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// NormalizeScopes drops duplicates and keeps first-seen order.
func NormalizeScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
