package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insforge/core/internal/apperror"
	"golang.org/x/crypto/bcrypt"
)

// AuditWriter is the subset of audit.Writer this package needs, accepted
// locally so auth never imports the audit package directly (sibling
// packages stay decoupled, per the pattern established in secret/audit).
type AuditWriter interface {
	Write(ctx context.Context, actor, action, module string, details map[string]any, ipAddress string) error
}

// Service implements the Authenticator (C3): registration and
// verification for Users and Admins, and OAuth-account linking.
type Service struct {
	repo  *Repository
	audit AuditWriter
}

func NewService(repo *Repository, audit AuditWriter) *Service {
	return &Service{repo: repo, audit: audit}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a new User with a bcrypt-hashed password. Email is
// normalized (lowercase+trim) before the uniqueness check, per spec §4.3.
func (s *Service) RegisterUser(ctx context.Context, email, password, displayName string) (*User, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "password hash failed", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.auditAfterCommit(ctx, email, "REGISTER_USER", "AUTH", map[string]any{"userId": u.ID})
	return u, nil
}

// VerifyUser checks email+password against a stored User. Returns
// ErrInvalidCredential for both "no such user" and "wrong password" —
// the distinction must never leak to a caller (timing/enumeration).
func (s *Service) VerifyUser(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			// Spend the same bcrypt work a real comparison would, so the
			// response time does not reveal whether the email exists.
			_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}
	return u, nil
}

// RegisterAdmin creates a new Admin. Mirrors RegisterUser but writes to
// the independent admins table (spec §4.3: admin and user never share
// identity space even when emails collide).
func (s *Service) RegisterAdmin(ctx context.Context, email, password, displayName string) (*Admin, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "password hash failed", err)
	}

	a := &Admin{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateAdmin(ctx, a); err != nil {
		return nil, err
	}

	s.auditAfterCommit(ctx, email, "REGISTER_ADMIN", "AUTH", map[string]any{"adminId": a.ID})
	return a, nil
}

func (s *Service) VerifyAdmin(ctx context.Context, email, password string) (*Admin, error) {
	email = normalizeEmail(email)
	a, err := s.repo.AdminByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}
	return a, nil
}

// LinkOAuthBinding implements the three-way branch from spec §4.3,
// atomically (Testable Property 10 — no window where a binding exists
// without its user, or a duplicate user is created for an
// already-bound provider account):
//
//  1. A binding already exists for (provider, accountID) → return its user.
//  2. No binding, but a User with this email already exists → attach a
//     new binding to that user.
//  3. Neither exists → create a new User and a new binding together.
func (s *Service) LinkOAuthBinding(ctx context.Context, provider, accountID string, profile Profile, tokens Tokens) (*User, error) {
	var result *User

	err := s.repo.WithTx(ctx, func(tx *Repository) error {
		existing, err := tx.BindingByProviderAccount(ctx, provider, accountID)
		if err != nil {
			return err
		}
		if existing != nil {
			u, err := tx.UserByID(ctx, existing.UserID)
			if err != nil {
				return err
			}
			result = u
			return nil
		}

		email := normalizeEmail(profile.Email)
		u, err := tx.UserByEmail(ctx, email)
		if err != nil && apperror.KindOf(err) != apperror.NotFound {
			return err
		}
		if u == nil {
			u = &User{
				ID:            uuid.New().String(),
				Email:         email,
				DisplayName:   profile.DisplayName,
				EmailVerified: true,
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
			if err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
		}

		binding := &OAuthBinding{
			ID:                uuid.New().String(),
			UserID:            u.ID,
			Provider:          provider,
			ProviderAccountID: accountID,
			AccessToken:       tokens.AccessToken,
			RefreshToken:      tokens.RefreshToken,
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		}
		if err := tx.CreateBinding(ctx, binding); err != nil {
			return err
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditAfterCommit(ctx, result.Email, "LINK_OAUTH", "AUTH", map[string]any{"provider": provider, "userId": result.ID})
	return result, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// BulkDeleteUsers removes every listed user id and writes one audit
// record for the batch.
func (s *Service) BulkDeleteUsers(ctx context.Context, actor string, ids []string) (int64, error) {
	n, err := s.repo.DeleteUsers(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.auditAfterCommit(ctx, actor, "BULK_DELETE_USERS", "AUTH", map[string]any{"count": n, "ids": ids})
	return n, nil
}

// auditAfterCommit writes the trail entry without letting an audit
// failure surface to the caller of the mutation it describes — see
// audit.Writer.Write's doc comment for the same availability tradeoff.
func (s *Service) auditAfterCommit(ctx context.Context, actor, action, module string, details map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Write(ctx, actor, action, module, details, "")
}
