// Package auth implements the Authenticator (C3): user and admin
// registration/verification, and OAuth-account linking. Users and Admins
// are parallel, independent root entities (spec §3) — no shared table,
// no inheritance.
package auth

import "time"

// User is an end-user identity. PasswordHash is empty for OAuth-only
// accounts created via LinkOAuthBinding.
type User struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash  string    `gorm:"column:password_hash"`
	DisplayName   string    `gorm:"column:name"`
	EmailVerified bool      `gorm:"column:email_verified;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }

// Admin is a separate root entity from User; an admin and a user may
// share an email without being the same identity (spec §4.3 invariant).
type Admin struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	DisplayName  string    `gorm:"column:name"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Admin) TableName() string { return "admins" }

// OAuthBinding links a User to a provider-issued account id. The
// (Provider, ProviderAccountID) pair is unique, and a user may have many
// bindings. Nothing here or in LinkOAuthBinding stops one user from
// holding two bindings for the same provider under different account ids.
type OAuthBinding struct {
	ID                string    `gorm:"type:uuid;primaryKey"`
	UserID            string    `gorm:"column:user_id;not null;index"`
	Provider          string    `gorm:"column:provider;not null;uniqueIndex:idx_oauth_binding_provider_account"`
	ProviderAccountID string    `gorm:"column:provider_account_id;not null;uniqueIndex:idx_oauth_binding_provider_account"`
	AccessToken       string    `gorm:"column:access_token"`
	RefreshToken      string    `gorm:"column:refresh_token"`
	ProviderProfile   string    `gorm:"column:profile;type:jsonb"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (OAuthBinding) TableName() string { return "oauth_bindings" }

// Profile is the provider-reported identity passed to LinkOAuthBinding,
// kept separate from the persisted JSON blob so callers don't need to
// marshal it themselves.
type Profile struct {
	Email       string
	DisplayName string
	Raw         map[string]any
}

// Tokens are the provider's OAuth token-exchange result, stored opaquely
// alongside the binding.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}
