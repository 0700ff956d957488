// Package secret implements the generic named-secret store (spec §4.2):
// encrypted-at-rest CRUD, rotation with a grace window, expiry, and
// access-time tracking. internal/secret/functionsecret wraps this package
// to host the `function_secrets` table with key-format validation.
package secret

import "time"

// Secret is the persisted row shape shared by every secretStore instance,
// regardless of which table it's bound to.
type Secret struct {
	ID              string     `gorm:"type:uuid;primaryKey"`
	Name            string     `gorm:"column:name;not null;index:idx_secret_name"`
	ValueCiphertext string     `gorm:"column:value_ciphertext;not null"`
	IsActive        bool       `gorm:"column:is_active;not null;default:true"`
	IsReserved      bool       `gorm:"column:is_reserved;not null;default:false"`
	LastUsedAt      *time.Time `gorm:"column:last_used_at"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

// TableName is the GORM default. Store applies the table name given to
// secret.New on every query via Table(), so this default only applies to
// code that uses the Secret type without going through a Store.
func (Secret) TableName() string { return "secrets" }

// Summary is the list-view projection: never includes ciphertext or
// plaintext, per spec §4.2 `list()`.
type Summary struct {
	Name       string     `json:"name"`
	IsActive   bool       `json:"isActive"`
	IsReserved bool       `json:"isReserved"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateOptions carries the optional flags for Create. IsReserved is
// intentionally absent here too: only reserve() may set is_reserved.
type CreateOptions struct {
	ExpiresAt *time.Time
}

// UpdatePatch carries the mutable fields for Update. Nil fields are left
// unchanged. IsReserved is intentionally absent: only reserve() may set it.
type UpdatePatch struct {
	Plaintext    *string
	IsActive     *bool
	SetExpiresAt bool
	ExpiresAt    *time.Time
}
