package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/insforge/core/internal/apperror"
	"gorm.io/gorm"
)

// Repository is the GORM-backed store for users, admins, and OAuth
// bindings. Grounded on the teacher's auth/repository/postgres.go
// CRUD-plus-error-translation style: every gorm.ErrRecordNotFound is
// translated to the package's domain sentinel at the boundary, callers
// never see a raw GORM error.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return apperror.Wrap(apperror.Internal, "create user failed", err)
	}
	return nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "lookup user failed", err)
	}
	return &u, nil
}

func (r *Repository) UserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "lookup user failed", err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	var users []User
	q := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, apperror.Wrap(apperror.Internal, "list users failed", err)
	}
	return users, nil
}

func (r *Repository) DeleteUsers(ctx context.Context, ids []string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&User{})
	if res.Error != nil {
		return 0, apperror.Wrap(apperror.Internal, "bulk delete users failed", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Repository) CreateAdmin(ctx context.Context, a *Admin) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return apperror.Wrap(apperror.Internal, "create admin failed", err)
	}
	return nil
}

func (r *Repository) AdminByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "lookup admin failed", err)
	}
	return &a, nil
}

// BindingByProviderAccount looks up an existing binding by the provider's
// identity pair. Returns (nil, nil) when absent — this is the first leg
// of the three-way branch in Service.LinkOAuthBinding, not an error case.
func (r *Repository) BindingByProviderAccount(ctx context.Context, provider, accountID string) (*OAuthBinding, error) {
	var b OAuthBinding
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, accountID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "lookup oauth binding failed", err)
	}
	return &b, nil
}

// WithTx runs fn inside a transaction, handing it a Repository bound to
// the transactional *gorm.DB.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) CreateBinding(ctx context.Context, b *OAuthBinding) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return apperror.Wrap(apperror.Internal, "create oauth binding failed", err)
	}
	return nil
}

// isUniqueViolation checks for a unique-constraint violation by message
// substring. GORM doesn't normalize driver errors, and Postgres/SQLite
// phrase this differently, so a substring check is the portable option
// across both drivers this module supports (spec §2).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "unique constraint")
}
