// Package db owns the application database connection and migration for
// the identity and secret-management core (spec §6's schema). Grounded
// on the teacher's internal/shared/db/connection.go: retrying connect
// with a linearly growing wait (1s, 2s, ...), a pooled *gorm.DB, a custom logger that
// downgrades known-benign GORM warnings.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/insforge/core/internal/audit"
	"github.com/insforge/core/internal/auth"
	"github.com/insforge/core/internal/config"
	"github.com/insforge/core/internal/oauth"
	"github.com/insforge/core/internal/secret"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes the database connection with retry logic. Driver
// "sqlite" is supported for tests and single-binary evaluation; anything
// else dials Postgres.
func Connect(cfg config.DatabaseConfig, slogger *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: NewCustomLogger(logger.Warn, slogger),
	}

	if cfg.Driver == "sqlite" {
		return gorm.Open(sqlite.Open(cfg.DBName), gormCfg)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var db *gorm.DB
	var err error

	const maxRetries = 10
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil && sqlDB.Ping() == nil {
				break
			}
			err = pingErr
		}
		if i < maxRetries-1 {
			wait := time.Duration(i+1) * time.Second
			slogger.Warn("database connection attempt failed, retrying", "attempt", i+1, "wait", wait.String())
			time.Sleep(wait)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate runs AutoMigrate for every model this core owns (spec §6).
// function_secrets shares the Secret Go type with secrets, distinguished
// only by table name, so it's migrated as a second explicit Table() call
// rather than a second type.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&auth.User{},
		&auth.Admin{},
		&auth.OAuthBinding{},
		&audit.Record{},
	); err != nil {
		return err
	}

	if err := db.Table("secrets").AutoMigrate(&secret.Secret{}); err != nil {
		return err
	}
	if err := db.Table("function_secrets").AutoMigrate(&secret.Secret{}); err != nil {
		return err
	}

	return oauth.AutoMigrateConfig(db)
}
