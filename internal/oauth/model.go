// Package oauth implements the OAuth Broker (C4): a hot-reloadable
// registry of per-provider OAuth configurations plus the
// authorization-code exchange protocol. Grounded on the now-retired
// teacher internal/auth/oauth_client.go (RedisClient-backed state,
// shared-credential fallback) and golang.org/x/oauth2 for the exchange
// itself.
package oauth

import "time"

// ProviderConfig is one provider's stored configuration (spec §3's
// OAuthProviderConfig). ClientSecret is plaintext in memory only after
// decryption by the repository; at rest it is a cipher wire string.
type ProviderConfig struct {
	Provider            string
	Enabled             bool
	ClientID            string
	ClientSecret        string
	RedirectURI         string
	UseSharedCredentials bool
}

// effectiveConfig is a ProviderConfig with its derived enabledness
// resolved (spec §4.4 point 2): enabled only when both clientId and
// clientSecret are non-empty after the shared-credential fallback is
// applied.
type effectiveConfig struct {
	ProviderConfig
	effectiveEnabled bool
}

// Snapshot is the immutable, atomically-publishable bundle every
// in-flight OAuth exchange reads from (spec §4.4, Design Notes
// "Snapshot (OAuth)"). Readers always see one consistent snapshot;
// reload never mutates a published Snapshot in place.
type Snapshot struct {
	providers map[string]effectiveConfig
	loadedAt  time.Time
}

func (s *Snapshot) get(provider string) (effectiveConfig, bool) {
	if s == nil {
		return effectiveConfig{}, false
	}
	c, ok := s.providers[provider]
	return c, ok
}

// AuthURL is returned by BeginAuthorization.
type AuthURL struct {
	URL   string
	State string
}

// Identity is the normalized result of a completed exchange: the linked
// user plus the minted session token.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

// Profile is the provider userinfo response, trimmed to what
// linkOAuthBinding needs.
type Profile struct {
	AccountID   string
	Email       string
	DisplayName string
}
