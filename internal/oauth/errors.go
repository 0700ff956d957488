package oauth

import "github.com/insforge/core/internal/apperror"

var (
	ErrProviderDisabled = apperror.New(apperror.NotFound, "oauth provider not configured or disabled")
	ErrStateInvalid     = apperror.New(apperror.OAuthStateInvalid, "oauth state missing, expired, or already used")
	ErrProviderExchange = apperror.New(apperror.OAuthProviderError, "oauth provider exchange failed")
)
