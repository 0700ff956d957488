package apperror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/insforge/core/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[apperror.Kind]int{
		apperror.Unauthorized:       http.StatusUnauthorized,
		apperror.TokenExpired:       http.StatusUnauthorized,
		apperror.Forbidden:          http.StatusForbidden,
		apperror.NotFound:           http.StatusNotFound,
		apperror.Conflict:           http.StatusConflict,
		apperror.InvalidInput:       http.StatusBadRequest,
		apperror.OAuthStateInvalid:  http.StatusBadRequest,
		apperror.OAuthProviderError: http.StatusBadGateway,
		apperror.CipherCorrupt:      http.StatusInternalServerError,
		apperror.Internal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		got := apperror.New(kind, "x").HTTPStatus()
		assert.Equal(t, want, got, string(kind))
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := apperror.Wrap(apperror.NotFound, "user not found", errors.New("record not found"))
	assert.True(t, errors.Is(err, apperror.Sentinel(apperror.NotFound)))
	assert.False(t, errors.Is(err, apperror.Sentinel(apperror.Conflict)))
}

func TestAsAndKindOf(t *testing.T) {
	err := apperror.New(apperror.Conflict, "email taken")
	got, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.Conflict, got.Kind)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))
	assert.Equal(t, apperror.Internal, apperror.KindOf(errors.New("plain")))
}

func TestWithNextActions(t *testing.T) {
	base := apperror.New(apperror.TokenExpired, "expired")
	withActions := base.WithNextActions("refresh_token")
	assert.Empty(t, base.NextActions)
	assert.Equal(t, []string{"refresh_token"}, withActions.NextActions)
}
