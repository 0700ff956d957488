package wire_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/insforge/core/internal/config"
	"github.com/insforge/core/internal/infrastructure/wire"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestBuildWiresEveryCollaboratorWithoutRedisOrClickHouse(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "test-signing-key"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := wire.Build(cfg, gormDB, nil, logger, nil)
	require.NoError(t, err)
	require.NotNil(t, app.Cipher)
	require.NotNil(t, app.Secrets)
	require.NotNil(t, app.FunctionSecrets)
	require.NotNil(t, app.Auth)
	require.NotNil(t, app.Session)
	require.NotNil(t, app.Authz)
	require.NotNil(t, app.Audit)
	require.NotNil(t, app.LogSources)
	require.Nil(t, app.OAuth, "oauth broker is left unwired when no redis client is configured")
}
