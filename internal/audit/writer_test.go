package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/insforge/core/internal/audit"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupWriter(t *testing.T) (*audit.Writer, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return audit.New(gormDB, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func TestWriteInsertsOneRecord(t *testing.T) {
	w, mock := setupWriter(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "audit_log"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := w.Write(ctx, "admin@example.com", "DELETE_USER", "AUTH", map[string]any{"userId": "123"}, "10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteFailureIsSwallowedByCaller(t *testing.T) {
	w, mock := setupWriter(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "audit_log"`).WillReturnError(gorm.ErrInvalidData)
	mock.ExpectRollback()

	err := w.Write(ctx, "system", "ROTATE_SECRET", "SECRETS", nil, "")
	require.Error(t, err)
	// Per §4.7 it is the CALLER's responsibility to log-and-continue;
	// Write itself still reports the error so the caller can choose to.
}
