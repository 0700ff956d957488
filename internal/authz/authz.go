// Package authz implements the Authorizer (C6): two gate functions that
// resolve request credentials to a typed Identity or a typed error.
// Neither gate implies the other — a handler documents which it
// requires, or accepts either (spec §4.6).
package authz

import (
	"context"

	"github.com/insforge/core/internal/apperror"
)

// Identity is the normalized descriptor every gate returns on success.
type Identity struct {
	ID    string
	Email string
	Type  string // "machine", "user", "admin"
	Role  string
}

// SecretVerifier is the subset of secret.Store this package needs to
// check the reserved API_KEY secret, accepted locally so authz never
// imports secret directly.
type SecretVerifier interface {
	Verify(ctx context.Context, name, candidate string) (bool, error)
}

// SessionVerifier is the subset of session.Service this package needs.
// session.Service.Verify/VerifyAdmin return session.Payload, a distinct
// named type from authz.Payload below, so the composition root wires a
// thin adapter rather than passing *session.Service directly — keeps
// authz from importing session for a type declaration alone.
type SessionVerifier interface {
	Verify(token string) (Payload, error)
	VerifyAdmin(token string) (Payload, error)
}

// Payload mirrors session.Payload structurally so this package doesn't
// need to import internal/session for a type declaration alone.
type Payload struct {
	Subject string
	Email   string
	Role    string
	Type    string
}

const apiKeySecretName = "API_KEY"

// Authorizer implements the C6 gate functions.
type Authorizer struct {
	secrets  SecretVerifier
	sessions SessionVerifier
}

func New(secrets SecretVerifier, sessions SessionVerifier) *Authorizer {
	return &Authorizer{secrets: secrets, sessions: sessions}
}

// RequireAPIKey resolves the x-api-key header against the reserved
// API_KEY secret, constant-time via C2.verify (spec §4.6).
func (a *Authorizer) RequireAPIKey(ctx context.Context, apiKey string) (Identity, error) {
	if apiKey == "" {
		return Identity{}, apperror.New(apperror.Unauthorized, "missing x-api-key header")
	}
	ok, err := a.secrets.Verify(ctx, apiKeySecretName, apiKey)
	if err != nil {
		return Identity{}, err
	}
	if !ok {
		return Identity{}, apperror.New(apperror.Unauthorized, "invalid api key")
	}
	return Identity{ID: "machine", Type: "machine", Role: "machine"}, nil
}

// RequireUser resolves a bearer token via C5.verify.
func (a *Authorizer) RequireUser(bearer string) (Identity, error) {
	p, err := a.sessions.Verify(bearer)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: p.Subject, Email: p.Email, Type: p.Type, Role: p.Role}, nil
}

// RequireAdmin resolves a bearer token via C5.verifyAdmin.
func (a *Authorizer) RequireAdmin(bearer string) (Identity, error) {
	p, err := a.sessions.VerifyAdmin(bearer)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: p.Subject, Email: p.Email, Type: p.Type, Role: p.Role}, nil
}
