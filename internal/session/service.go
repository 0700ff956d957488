package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/insforge/core/internal/apperror"
)

// Lookup resolves an opaque session token to a Payload, implemented by
// whatever collaborator owns server-stored sessions. Accepted as a local
// interface so this package never imports its caller.
type Lookup interface {
	LookupSession(ctx context.Context, token string) (Payload, bool, error)
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// Service implements the Session Issuer (C5).
type Service struct {
	signingKey []byte
	lookup     Lookup
}

// New constructs a Service. signingKey is the process master secret
// (spec §4.5: "same secret acceptable for this core") — the composition
// root passes config.SigningKey()'s raw bytes (JWT_SECRET if set, else
// ENCRYPTION_KEY), never the cipher's derived AES key.
func New(signingKey []byte, lookup Lookup) *Service {
	return &Service{signingKey: signingKey, lookup: lookup}
}

// Issue mints an HS256 JWT for the given subject (spec §4.5 `issue`).
// subjectType is "user" or "admin"; role is "authenticated" or
// "project_admin".
func (s *Service) Issue(ctx context.Context, subjectID, email, role, subjectType string) (string, error) {
	now := time.Now()
	c := claims{
		Email: email,
		Role:  role,
		Type:  subjectType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "token signing failed", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, and required claims (spec §4.5
// `verify`).
func (s *Service) Verify(tokenString string) (Payload, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, ErrTokenExpired
		}
		return Payload{}, ErrTokenInvalid
	}
	if !tok.Valid || c.Subject == "" || c.Role == "" {
		return Payload{}, ErrTokenInvalid
	}

	return Payload{Subject: c.Subject, Email: c.Email, Role: c.Role, Type: c.Type}, nil
}

// VerifyAdmin is Verify plus the project_admin role requirement (spec
// §4.5 `verifyAdmin`).
func (s *Service) VerifyAdmin(tokenString string) (Payload, error) {
	p, err := s.Verify(tokenString)
	if err != nil {
		return Payload{}, err
	}
	if p.Role != RoleProjectAdmin {
		return Payload{}, ErrNotAdmin
	}
	return p, nil
}

// Me implements the universal `/me` lookup (spec §4.5): try JWT
// verification first, then fall back to an opaque session-token lookup
// via the Lookup collaborator. Never makes an HTTP call to resolve
// itself — the anti-pattern spec §9 explicitly calls out and forbids.
func (s *Service) Me(ctx context.Context, bearer string) (Payload, error) {
	if p, err := s.Verify(bearer); err == nil {
		return p, nil
	}
	if s.lookup == nil {
		return Payload{}, apperror.New(apperror.Unauthorized, "not authenticated")
	}

	p, ok, err := s.lookup.LookupSession(ctx, bearer)
	if err != nil {
		return Payload{}, apperror.Wrap(apperror.Internal, "session lookup failed", err)
	}
	if !ok {
		return Payload{}, apperror.New(apperror.Unauthorized, "not authenticated")
	}
	return p, nil
}
