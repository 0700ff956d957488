// cmd/seed bootstraps a fresh deployment: seeds the reserved API_KEY
// secret from ACCESS_API_KEY (if set) and creates the first admin from
// BOOTSTRAP_ADMIN_EMAIL/BOOTSTRAP_ADMIN_PASSWORD (if set and no admin
// with that email exists yet). Safe to run repeatedly.
package main

import (
	"context"
	"log"
	"os"

	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/config"
	"github.com/insforge/core/internal/infrastructure/wire"
	"github.com/insforge/core/internal/shared/db"
	"github.com/insforge/core/internal/shared/logging"
	"github.com/insforge/core/internal/shared/redis"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slogger, clickHouse, err := logging.InitializeLogging(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}

	database, err := db.Connect(cfg.Database, slogger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := redis.NewClient(&cfg.Redis, slogger)
	if err != nil {
		redisClient = nil
	}

	app, err := wire.Build(cfg, database, redisClient, slogger, clickHouse)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	ctx := context.Background()

	if cfg.Secrets.AccessAPIKey != "" {
		if err := app.Secrets.InitializeApiKey(ctx, cfg.Secrets.AccessAPIKey); err != nil {
			slogger.Error("failed to seed ACCESS_API_KEY", "error", err)
			os.Exit(1)
		}
		slogger.Info("seeded API_KEY secret")
	}

	email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	if _, err := app.Auth.RegisterAdmin(ctx, email, password, ""); err != nil {
		if apperror.KindOf(err) == apperror.Conflict {
			slogger.Info("bootstrap admin already exists", "email", email)
			return
		}
		slogger.Error("failed to create bootstrap admin", "error", err)
		os.Exit(1)
	}
	slogger.Info("created bootstrap admin", "email", email)
}
