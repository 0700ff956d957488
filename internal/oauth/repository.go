package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/insforge/core/internal/apperror"
	"gorm.io/gorm"
)

// configRow mirrors spec §6's generic config table:
// config(key text pk, value text, created_at, updated_at).
type configRow struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (configRow) TableName() string { return "config" }

// AutoMigrateConfig migrates the generic config table this package's
// Repository reads/writes. Exported so internal/shared/db's Migrate can
// include it without duplicating the table definition.
func AutoMigrateConfig(db *gorm.DB) error {
	return db.AutoMigrate(&configRow{})
}

// storedConfig is the JSON shape persisted in configRow.Value. ClientSecret
// here is always a cipher wire string, never plaintext.
type storedConfig struct {
	Enabled              bool   `json:"enabled"`
	ClientID             string `json:"clientId"`
	ClientSecretCipher   string `json:"clientSecret"`
	RedirectURI          string `json:"redirectUri"`
	UseSharedCredentials bool   `json:"useSharedKeys"`
}

const configKeyPrefix = "auth.oauth.provider."

// cipher is the subset of cipher.Cipher this package needs, accepted
// locally per the pattern established in internal/secret.
type cipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(wire string) ([]byte, error)
}

// Repository persists OAuthProviderConfig rows through the generic
// config key/value table, encrypting ClientSecret at rest.
type Repository struct {
	db     *gorm.DB
	cipher cipher
}

func NewRepository(db *gorm.DB, c cipher) *Repository {
	return &Repository{db: db, cipher: c}
}

// LoadAll reads every configured provider row. Absent rows are simply
// not returned — the broker treats "no row" the same as "disabled".
func (r *Repository) LoadAll(ctx context.Context, knownProviders []string) ([]ProviderConfig, error) {
	var out []ProviderConfig
	for _, provider := range knownProviders {
		cfg, ok, err := r.load(ctx, provider)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (r *Repository) load(ctx context.Context, provider string) (ProviderConfig, bool, error) {
	var row configRow
	err := r.db.WithContext(ctx).First(&row, "key = ?", configKeyPrefix+provider).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ProviderConfig{}, false, nil
	}
	if err != nil {
		return ProviderConfig{}, false, apperror.Wrap(apperror.Internal, "oauth config load failed", err)
	}

	var sc storedConfig
	if err := json.Unmarshal([]byte(row.Value), &sc); err != nil {
		return ProviderConfig{}, false, apperror.Wrap(apperror.Internal, "oauth config decode failed", err)
	}

	secret := ""
	if sc.ClientSecretCipher != "" {
		plain, err := r.cipher.Decrypt(sc.ClientSecretCipher)
		if err != nil {
			return ProviderConfig{}, false, apperror.Wrap(apperror.CipherCorrupt, "oauth client secret decrypt failed", err)
		}
		secret = string(plain)
	}

	return ProviderConfig{
		Provider:             provider,
		Enabled:              sc.Enabled,
		ClientID:             sc.ClientID,
		ClientSecret:         secret,
		RedirectURI:          sc.RedirectURI,
		UseSharedCredentials: sc.UseSharedCredentials,
	}, true, nil
}

// maskedSecret is the sentinel incoming update payloads use for "leave
// this field unchanged" (spec §4.4 point 3).
const maskedSecret = "****"

// Save upserts one provider's config. If update.ClientSecret equals the
// mask sentinel, the previously stored secret is decrypted and
// re-encrypted under a fresh IV rather than encrypting the literal mask
// string; if no stored secret can be loaded, the secret is saved empty.
func (r *Repository) Save(ctx context.Context, update ProviderConfig) error {
	secretCipher := ""
	if update.ClientSecret == maskedSecret {
		if existing, ok, err := r.load(ctx, update.Provider); err == nil && ok {
			plain, err := r.cipher.Encrypt([]byte(existing.ClientSecret))
			if err != nil {
				return apperror.Wrap(apperror.Internal, "oauth client secret re-encrypt failed", err)
			}
			secretCipher = plain
		}
	} else if update.ClientSecret != "" {
		enc, err := r.cipher.Encrypt([]byte(update.ClientSecret))
		if err != nil {
			return apperror.Wrap(apperror.Internal, "oauth client secret encrypt failed", err)
		}
		secretCipher = enc
	}

	sc := storedConfig{
		Enabled:              update.Enabled,
		ClientID:             update.ClientID,
		ClientSecretCipher:   secretCipher,
		RedirectURI:          update.RedirectURI,
		UseSharedCredentials: update.UseSharedCredentials,
	}
	body, err := json.Marshal(sc)
	if err != nil {
		return apperror.Wrap(apperror.Internal, "oauth config encode failed", err)
	}

	row := configRow{
		Key:       configKeyPrefix + update.Provider,
		Value:     string(body),
		UpdatedAt: time.Now(),
	}
	err = r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		Assign(configRow{Value: row.Value, UpdatedAt: row.UpdatedAt}).
		FirstOrCreate(&row, "key = ?", row.Key).Error
	if err != nil {
		return apperror.Wrap(apperror.Internal, "oauth config save failed", err)
	}
	return nil
}
