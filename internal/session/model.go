// Package session implements the Session Issuer (C5): JWT issuance and
// verification, plus the universal `/me` identity lookup that falls back
// to an opaque session token when JWT verification fails. Grounded on
// the now-retired teacher internal/auth/jwt.go, adapted from its
// RS256/JWKS asymmetric scheme to the spec's symmetric HS256 (spec §4.5
// explicitly permits reusing the cipher's master secret as the signing
// key — a deliberate departure from the teacher's key-rotation design,
// simpler and sufficient for this module's single-process scope).
package session

import "time"

// Role and Type enumerate the two closed value sets spec §4.5 names.
const (
	RoleAuthenticated = "authenticated"
	RoleProjectAdmin  = "project_admin"

	TypeUser  = "user"
	TypeAdmin = "admin"
)

// Payload is the normalized claim set, for both a verified JWT and a
// resolved opaque session.
type Payload struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Type    string `json:"type"`
}

// sessionTTL is the spec §4.5 fixed expiry.
const sessionTTL = 7 * 24 * time.Hour
