package secret

import "github.com/insforge/core/internal/apperror"

// Sentinel errors in the teacher's style (see auth/domain/errors.go) — thin
// wrappers around apperror so callers can still errors.Is against a
// package-local name.
var (
	ErrNotFound    = apperror.New(apperror.NotFound, "secret not found")
	ErrNameTaken   = apperror.New(apperror.Conflict, "secret name already in use")
	ErrReserved    = apperror.New(apperror.Forbidden, "reserved secret cannot be modified")
	ErrInvalidName = apperror.New(apperror.InvalidInput, "invalid secret name")
)
