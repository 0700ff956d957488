package functionsecret_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/secret"
	"github.com/insforge/core/internal/secret/functionsecret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubCipher struct{}

func (stubCipher) Encrypt(p []byte) (string, error) { return "ct:" + string(p), nil }
func (stubCipher) Decrypt(w string) ([]byte, error) { return []byte(w[3:]), nil }

type noopAudit struct{}

func (noopAudit) Write(ctx context.Context, actor, action, module string, details map[string]any, ip string) error {
	return nil
}

func TestRejectsLowercaseKey(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store := functionsecret.New(gormDB, stubCipher{}, noopAudit{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = store.Create(context.Background(), "not_valid_lowercase", "v", secret.CreateOptions{})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.InvalidInput, appErr.Kind)
}
