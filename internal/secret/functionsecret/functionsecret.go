// Package functionsecret wraps the generic secret.Store to host the
// function_secrets table (spec §6): keys restricted to ^[A-Z0-9_]+$,
// values injected into function runtime environments.
package functionsecret

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/secret"
	"gorm.io/gorm"
)

var keyPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return apperror.New(apperror.InvalidInput, "function secret key must match ^[A-Z0-9_]+$")
	}
	return nil
}

// Encryptor and AuditWriter mirror secret's unexported interfaces so
// callers can construct a Store without importing secret's internals.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(wire string) ([]byte, error)
}

type AuditWriter interface {
	Write(ctx context.Context, actor, action, module string, details map[string]any, ipAddress string) error
}

// Store is the function_secrets specialization of secret.Store.
type Store struct {
	*secret.Store
}

// New constructs a Store bound to the function_secrets table, auditing
// under the FUNCTIONS module and validating every key against
// ^[A-Z0-9_]+$ before Create.
func New(db *gorm.DB, cipher Encryptor, audit AuditWriter, logger *slog.Logger) *Store {
	inner := secret.New(db, "function_secrets", "FUNCTIONS", cipher, audit, logger).
		WithNameValidator(validateKey)
	return &Store{Store: inner}
}
