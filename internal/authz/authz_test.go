package authz_test

import (
	"context"
	"testing"

	"github.com/insforge/core/internal/authz"
	"github.com/stretchr/testify/require"
)

type stubSecrets struct {
	name, value string
	err         error
}

func (s stubSecrets) Verify(ctx context.Context, name, candidate string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return name == s.name && candidate == s.value, nil
}

type stubSessions struct {
	payload   authz.Payload
	err       error
	adminErr  error
}

func (s stubSessions) Verify(token string) (authz.Payload, error) { return s.payload, s.err }
func (s stubSessions) VerifyAdmin(token string) (authz.Payload, error) {
	if s.adminErr != nil {
		return authz.Payload{}, s.adminErr
	}
	return s.payload, s.err
}

func TestRequireAPIKeyAcceptsMatchingKey(t *testing.T) {
	a := authz.New(stubSecrets{name: "API_KEY", value: "ik_abc"}, stubSessions{})
	id, err := a.RequireAPIKey(context.Background(), "ik_abc")
	require.NoError(t, err)
	require.Equal(t, "machine", id.Type)
}

func TestRequireAPIKeyRejectsEmptyHeader(t *testing.T) {
	a := authz.New(stubSecrets{name: "API_KEY", value: "ik_abc"}, stubSessions{})
	_, err := a.RequireAPIKey(context.Background(), "")
	require.Error(t, err)
}

func TestRequireAPIKeyRejectsWrongKey(t *testing.T) {
	a := authz.New(stubSecrets{name: "API_KEY", value: "ik_abc"}, stubSessions{})
	_, err := a.RequireAPIKey(context.Background(), "ik_wrong")
	require.Error(t, err)
}

func TestRequireUserReturnsIdentityFromPayload(t *testing.T) {
	a := authz.New(stubSecrets{}, stubSessions{payload: authz.Payload{Subject: "u1", Role: "authenticated", Type: "user"}})
	id, err := a.RequireUser("some-jwt")
	require.NoError(t, err)
	require.Equal(t, "u1", id.ID)
}
