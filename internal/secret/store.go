package secret

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/insforge/core/internal/apperror"
	"gorm.io/gorm"
)

// encryptor is the subset of *cipher.Cipher this package needs, accepted
// as an interface so store tests can stub it out.
type encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(wire string) ([]byte, error)
}

// AuditWriter is the subset of *audit.Writer this package needs. Declared
// locally (accept interfaces, return structs) so secret has no import-time
// dependency on the audit package.
type AuditWriter interface {
	Write(ctx context.Context, actor, action, module string, details map[string]any, ipAddress string) error
}

// Store implements the generic Secret Store (C2) over a single GORM table.
// Both `secrets` and `function_secrets` are served by a Store configured
// with a different table name and, for function_secrets, a NameValidator
// (see functionsecret.Store).
type Store struct {
	db            *gorm.DB
	table         string
	module        string
	cipher        encryptor
	audit         AuditWriter
	logger        *slog.Logger
	nameValidator func(name string) error
}

// New constructs a Store bound to table, emitting audit records under
// module (e.g. "SECRETS" or "FUNCTIONS").
func New(db *gorm.DB, table, module string, cipher encryptor, audit AuditWriter, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		table:  table,
		module: module,
		cipher: cipher,
		audit:  audit,
		logger: logger,
	}
}

// WithNameValidator returns a copy of s that rejects names failing
// validate() in Create (Update addresses rows by id and never changes a
// name), used by functionsecret to enforce
// ^[A-Z0-9_]+$ on the `key` column (aliased here as `name`, per the
// consolidation decision in DESIGN.md).
func (s *Store) WithNameValidator(validate func(name string) error) *Store {
	n := *s
	n.nameValidator = validate
	return &n
}

func (s *Store) validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if s.nameValidator != nil {
		return s.nameValidator(name)
	}
	return nil
}

// Create encrypts plaintext and inserts a new active row. Duplicate name
// (among active rows) is a Conflict per spec §4.2.
func (s *Store) Create(ctx context.Context, name, plaintext string, opts CreateOptions) (string, error) {
	if err := s.validateName(name); err != nil {
		return "", err
	}

	var existing int64
	if err := s.db.WithContext(ctx).Table(s.table).
		Where("name = ? AND is_active = ?", name, true).
		Count(&existing).Error; err != nil {
		return "", apperror.Wrap(apperror.Internal, "failed to check existing secret", err)
	}
	if existing > 0 {
		return "", ErrNameTaken
	}

	ct, err := s.cipher.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}

	row := Secret{
		ID:              uuid.New().String(),
		Name:            name,
		ValueCiphertext: ct,
		IsActive:        true,
		IsReserved:      false,
		ExpiresAt:       opts.ExpiresAt,
	}
	if err := s.db.WithContext(ctx).Table(s.table).Create(&row).Error; err != nil {
		return "", apperror.Wrap(apperror.Internal, "failed to create secret", err)
	}

	s.auditAfterCommit(ctx, "system", "CREATE_SECRET", map[string]any{"name": name})
	return row.ID, nil
}

// reserve inserts a row with is_reserved=true unless an active row of
// that name already exists, in which case it returns that row's id
// unchanged; an existing non-reserved row is not flipped to reserved.
// This is the ONLY path that may set that column — see DESIGN.md
// decision 2.
func (s *Store) reserve(ctx context.Context, name, plaintext string) (string, error) {
	var row Secret
	err := s.db.WithContext(ctx).Table(s.table).
		Where("name = ? AND is_active = ?", name, true).
		First(&row).Error
	if err == nil {
		return row.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperror.Wrap(apperror.Internal, "failed to look up reserved secret", err)
	}

	ct, err := s.cipher.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	row = Secret{
		ID:              uuid.New().String(),
		Name:            name,
		ValueCiphertext: ct,
		IsActive:        true,
		IsReserved:      true,
	}
	if err := s.db.WithContext(ctx).Table(s.table).Create(&row).Error; err != nil {
		return "", apperror.Wrap(apperror.Internal, "failed to create reserved secret", err)
	}
	return row.ID, nil
}

// GetByName returns the decrypted plaintext for an active, unexpired row,
// updating lastUsedAt as a side effect. Absence is not an error (§4.2).
func (s *Store) GetByName(ctx context.Context, name string) (string, bool, error) {
	var row Secret
	err := s.db.WithContext(ctx).Table(s.table).
		Where("name = ? AND is_active = ?", name, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperror.Wrap(apperror.Internal, "failed to look up secret", err)
	}
	if row.ExpiresAt != nil && row.ExpiresAt.Before(time.Now()) {
		return "", false, nil
	}

	plaintext, err := s.cipher.Decrypt(row.ValueCiphertext)
	if err != nil {
		s.logger.Error("secret decrypt failed", "name", name, "error", err)
		return "", false, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Table(s.table).
		Where("id = ?", row.ID).
		Update("last_used_at", now).Error; err != nil {
		s.logger.Warn("failed to update secret last_used_at", "name", name, "error", err)
	}

	return string(plaintext), true, nil
}

// List returns every row's metadata, never ciphertext or plaintext.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var rows []Secret
	if err := s.db.WithContext(ctx).Table(s.table).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to list secrets", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{
			Name:       r.Name,
			IsActive:   r.IsActive,
			IsReserved: r.IsReserved,
			LastUsedAt: r.LastUsedAt,
			ExpiresAt:  r.ExpiresAt,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// Update applies patch to the row identified by id. Reserved rows reject
// every patch with Forbidden.
func (s *Store) Update(ctx context.Context, id string, patch UpdatePatch) error {
	var row Secret
	if err := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return apperror.Wrap(apperror.Internal, "failed to look up secret", err)
	}
	if row.IsReserved {
		return ErrReserved
	}

	updates := map[string]any{}
	if patch.Plaintext != nil {
		ct, err := s.cipher.Encrypt([]byte(*patch.Plaintext))
		if err != nil {
			return err
		}
		updates["value_ciphertext"] = ct
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.SetExpiresAt {
		updates["expires_at"] = patch.ExpiresAt
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).Updates(updates).Error; err != nil {
		return apperror.Wrap(apperror.Internal, "failed to update secret", err)
	}

	s.auditAfterCommit(ctx, "system", "UPDATE_SECRET", map[string]any{"id": id})
	return nil
}

// Verify does a constant-time comparison of candidate against the current
// decrypted value. It never returns an error on mismatch, only false, and
// updates lastUsedAt only when the comparison succeeds (§4.2).
func (s *Store) Verify(ctx context.Context, name, candidate string) (bool, error) {
	plaintext, ok, err := s.peek(ctx, name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(plaintext), []byte(candidate)) != 1 {
		return false, nil
	}

	now := time.Now()
	s.db.WithContext(ctx).Table(s.table).
		Where("name = ? AND is_active = ?", name, true).
		Update("last_used_at", now)
	return true, nil
}

// peek is like GetByName but never updates last_used_at — Verify controls
// that side effect itself so a failed comparison doesn't touch the row.
func (s *Store) peek(ctx context.Context, name string) (string, bool, error) {
	var row Secret
	err := s.db.WithContext(ctx).Table(s.table).
		Where("name = ? AND is_active = ?", name, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperror.Wrap(apperror.Internal, "failed to look up secret", err)
	}
	if row.ExpiresAt != nil && row.ExpiresAt.Before(time.Now()) {
		return "", false, nil
	}
	plaintext, err := s.cipher.Decrypt(row.ValueCiphertext)
	if err != nil {
		return "", false, nil
	}
	return string(plaintext), true, nil
}

// Rotate marks the current active row inactive with a 24h grace expiry and
// inserts a new active row sharing the same name, in one transaction —
// this is the only path allowed to leave two rows of the same name, and
// only ever one of the two as active (Testable Properties 3, 4).
func (s *Store) Rotate(ctx context.Context, id, newPlaintext string) (string, error) {
	var newID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Secret
		if err := tx.Table(s.table).Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return apperror.Wrap(apperror.Internal, "failed to look up secret", err)
		}
		if row.IsReserved {
			return ErrReserved
		}

		ct, err := s.cipher.Encrypt([]byte(newPlaintext))
		if err != nil {
			return err
		}

		grace := time.Now().Add(24 * time.Hour)
		if err := tx.Table(s.table).Where("id = ?", id).Updates(map[string]any{
			"is_active":  false,
			"expires_at": grace,
		}).Error; err != nil {
			return apperror.Wrap(apperror.Internal, "failed to deactivate old secret", err)
		}

		newRow := Secret{
			ID:              uuid.New().String(),
			Name:            row.Name,
			ValueCiphertext: ct,
			IsActive:        true,
			IsReserved:      row.IsReserved,
		}
		if err := tx.Table(s.table).Create(&newRow).Error; err != nil {
			return apperror.Wrap(apperror.Internal, "failed to create rotated secret", err)
		}
		newID = newRow.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.auditAfterCommit(ctx, "system", "ROTATE_SECRET", map[string]any{"id": id, "newId": newID})
	return newID, nil
}

// CleanupExpired hard-deletes rows whose expiresAt is strictly past.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Table(s.table).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&Secret{})
	if res.Error != nil {
		return 0, apperror.Wrap(apperror.Internal, "failed to cleanup expired secrets", res.Error)
	}
	return res.RowsAffected, nil
}

// InitializeApiKey ensures a reserved secret named API_KEY exists,
// idempotently. envValue, if non-empty, seeds it (prefixed with "ik_" if
// missing); otherwise a fresh "ik_"+hex(32 random bytes) key is generated.
func (s *Store) InitializeApiKey(ctx context.Context, envValue string) error {
	plaintext := envValue
	if plaintext != "" {
		if len(plaintext) < 3 || plaintext[:3] != "ik_" {
			plaintext = "ik_" + plaintext
		}
	} else {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return apperror.Wrap(apperror.Internal, "failed to generate API key", err)
		}
		plaintext = "ik_" + hex.EncodeToString(buf)
	}

	_, err := s.reserve(ctx, "API_KEY", plaintext)
	return err
}

func (s *Store) auditAfterCommit(ctx context.Context, actor, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Write(ctx, actor, action, s.module, details, ""); err != nil {
		s.logger.Error("audit write failed", "action", action, "error", err)
	}
}
