package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the identity and secret-management
// core. Trimmed from the teacher's Config to this module's scope (spec
// Non-goals exclude billing/k8s/monitoring/NATS entirely — those
// sections are dropped rather than carried as dead config surface).
type Config struct {
	Server         ServerConfig             `mapstructure:"server"`
	Database       DatabaseConfig           `mapstructure:"database"`
	Redis          RedisConfig              `mapstructure:"redis"`
	Auth           AuthConfig               `mapstructure:"auth"`
	Secrets        SecretsConfig            `mapstructure:"secrets"`
	OAuthProviders map[string]OAuthProvider `mapstructure:"oauth_providers"`
	ClickHouse     ClickHouseConfig         `mapstructure:"clickhouse"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds the application Postgres (or SQLite, for tests)
// connection parameters.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig backs the OAuth Broker's state store.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds the master secrets for C1/C5. Spec §6: exactly one of
// EncryptionKey/JWTSecret is required; Validate enforces "at least one".
type AuthConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
	JWTSecret     string `mapstructure:"jwt_secret"`
}

// SecretsConfig seeds the reserved API_KEY secret on first run (spec §6
// `ACCESS_API_KEY`).
type SecretsConfig struct {
	AccessAPIKey string `mapstructure:"access_api_key"`
}

// OAuthProvider holds one provider's shared-credential fallback slot
// (spec §6: `INSFORGE_GOOGLE_CLIENT_ID`/`_SECRET` and per-provider
// override slots).
type OAuthProvider struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

// ClickHouseConfig is the optional C7 SecuritySink fan-out target; a
// zero-value Address means no ClickHouse sink is wired.
type ClickHouseConfig struct {
	Address  string `mapstructure:"address"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// Load loads configuration from file and environment variables, in that
// precedence order (teacher's Load, scope trimmed).
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/insforge")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.OAuthProviders == nil {
		config.OAuthProviders = map[string]OAuthProvider{}
	}
	for _, name := range []string{"google", "github"} {
		p := config.OAuthProviders[name]
		if p.ClientID == "" {
			p.ClientID = viper.GetString(fmt.Sprintf("insforge_%s_client_id", name))
		}
		if p.ClientSecret == "" {
			p.ClientSecret = viper.GetString(fmt.Sprintf("insforge_%s_client_secret", name))
		}
		config.OAuthProviders[name] = p
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "insforge")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("clickhouse.address", "")
	viper.SetDefault("clickhouse.user", "default")
	viper.SetDefault("clickhouse.password", "")
	viper.SetDefault("clickhouse.database", "default")
}

// Validate enforces spec §6's master-passphrase rule: exactly one of
// ENCRYPTION_KEY/JWT_SECRET configured is sufficient (a single value may
// serve both the cipher and the session signer, per §4.5).
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Auth.EncryptionKey == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("one of ENCRYPTION_KEY or JWT_SECRET is required")
	}
	return nil
}

// MasterPassphrase returns the single secret this process derives both
// the cipher key and (absent a distinct JWT_SECRET) the session signing
// key from.
func (c *Config) MasterPassphrase() string {
	if c.Auth.EncryptionKey != "" {
		return c.Auth.EncryptionKey
	}
	return c.Auth.JWTSecret
}

// SigningKey returns the session signing secret, preferring a distinct
// JWT_SECRET over the cipher passphrase (spec §4.5: "distinct from the
// cipher key is permitted; same secret acceptable for this core").
func (c *Config) SigningKey() string {
	if c.Auth.JWTSecret != "" {
		return c.Auth.JWTSecret
	}
	return c.Auth.EncryptionKey
}
