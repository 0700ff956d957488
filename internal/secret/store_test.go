package secret_test

import (
	"context"
	"log/slog"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubCipher is a trivial reversible "encryption" so store tests don't
// depend on the real cipher package.
type stubCipher struct{}

func (stubCipher) Encrypt(plaintext []byte) (string, error) {
	return "ct:" + string(plaintext), nil
}

func (stubCipher) Decrypt(wire string) ([]byte, error) {
	if len(wire) < 3 || wire[:3] != "ct:" {
		return nil, apperror.New(apperror.CipherCorrupt, "bad stub ciphertext")
	}
	return []byte(wire[3:]), nil
}

type noopAudit struct{ calls int }

func (n *noopAudit) Write(ctx context.Context, actor, action, module string, details map[string]any, ip string) error {
	n.calls++
	return nil
}

func setupStore(t *testing.T) (*secret.Store, sqlmock.Sqlmock, *noopAudit) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	audit := &noopAudit{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := secret.New(gormDB, "secrets", "SECRETS", stubCipher{}, audit, logger)
	return store, mock, audit
}

func TestCreateRejectsDuplicateActiveName(t *testing.T) {
	store, mock, _ := setupStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(1),
	)

	_, err := store.Create(ctx, "S", "v1", secret.CreateOptions{})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.Conflict, appErr.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsEmptyName(t *testing.T) {
	store, _, _ := setupStore(t)
	_, err := store.Create(context.Background(), "", "v1", secret.CreateOptions{})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.InvalidInput, appErr.Kind)
}

func TestGetByNameReturnsAbsentNotError(t *testing.T) {
	store, mock, _ := setupStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, ok, err := store.GetByName(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
