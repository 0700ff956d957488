package session

import "github.com/insforge/core/internal/apperror"

var (
	ErrTokenInvalid = apperror.New(apperror.Unauthorized, "token signature or claims invalid")
	ErrTokenExpired = apperror.New(apperror.TokenExpired, "token has expired")
	ErrNotAdmin     = apperror.New(apperror.Forbidden, "admin role required")
)
