package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/insforge/core/internal/session"
	"github.com/stretchr/testify/require"
)

func TestIssueThenVerifyRoundTrip(t *testing.T) {
	svc := session.New([]byte("test-signing-key"), nil)
	tok, err := svc.Issue(context.Background(), "user-1", "user@example.com", session.RoleAuthenticated, session.TypeUser)
	require.NoError(t, err)

	p, err := svc.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", p.Subject)
	require.Equal(t, session.RoleAuthenticated, p.Role)
}

func TestVerifyRejectsWrongSigningKey(t *testing.T) {
	issuer := session.New([]byte("key-a"), nil)
	verifier := session.New([]byte("key-b"), nil)

	tok, err := issuer.Issue(context.Background(), "user-1", "user@example.com", session.RoleAuthenticated, session.TypeUser)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, session.ErrTokenInvalid)
}

func TestVerifyAdminRejectsNonAdminRole(t *testing.T) {
	svc := session.New([]byte("test-signing-key"), nil)
	tok, err := svc.Issue(context.Background(), "user-1", "user@example.com", session.RoleAuthenticated, session.TypeUser)
	require.NoError(t, err)

	_, err = svc.VerifyAdmin(tok)
	require.ErrorIs(t, err, session.ErrNotAdmin)
}

func TestVerifyDetectsExpiredToken(t *testing.T) {
	svc := session.New([]byte("test-signing-key"), nil)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"role": session.RoleAuthenticated,
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	tok, err := expired.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, session.ErrTokenExpired)
}

type stubLookup struct {
	payload session.Payload
	ok      bool
}

func (s stubLookup) LookupSession(ctx context.Context, token string) (session.Payload, bool, error) {
	return s.payload, s.ok, nil
}

func TestMeFallsBackToOpaqueSessionLookup(t *testing.T) {
	lookup := stubLookup{payload: session.Payload{Subject: "u1", Role: session.RoleAuthenticated}, ok: true}
	svc := session.New([]byte("test-signing-key"), lookup)

	p, err := svc.Me(context.Background(), "not-a-jwt-opaque-token")
	require.NoError(t, err)
	require.Equal(t, "u1", p.Subject)
}

func TestMeFailsWhenNeitherJWTNorSessionMatch(t *testing.T) {
	svc := session.New([]byte("test-signing-key"), stubLookup{ok: false})
	_, err := svc.Me(context.Background(), "garbage")
	require.Error(t, err)
}
