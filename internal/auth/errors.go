package auth

import "github.com/insforge/core/internal/apperror"

var (
	ErrEmailTaken        = apperror.New(apperror.Conflict, "an account with this email already exists")
	ErrInvalidCredential = apperror.New(apperror.Unauthorized, "invalid email or password")
	ErrUserNotFound      = apperror.New(apperror.NotFound, "user not found")
	ErrAdminNotFound     = apperror.New(apperror.NotFound, "admin not found")
)
