package auth_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/insforge/core/internal/auth"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type noopAudit struct{ calls int }

func (n *noopAudit) Write(ctx context.Context, actor, action, module string, details map[string]any, ip string) error {
	n.calls++
	return nil
}

func setupService(t *testing.T) (*auth.Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo := auth.NewRepository(gormDB)
	return auth.NewService(repo, &noopAudit{}), mock
}

func TestRegisterUserInsertsUserRow(t *testing.T) {
	svc, mock := setupService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	_, err := svc.RegisterUser(ctx, "  User@Example.com ", "correcthorsebattery", "User")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyUserWrongPasswordReturnsInvalidCredential(t *testing.T) {
	svc, mock := setupService(t)
	ctx := context.Background()

	// bcrypt hash of "correct-password"
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "email_verified", "created_at", "updated_at"}).
		AddRow("u1", "user@example.com", "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5L7FxoYmMsjvaIyUZ1A4cMYDrKa.y", "User", true, nil, nil)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(rows)

	_, err := svc.VerifyUser(ctx, "user@example.com", "wrong-password")
	require.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyUserUnknownEmailReturnsInvalidCredentialNotNotFound(t *testing.T) {
	svc, mock := setupService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows(nil))

	_, err := svc.VerifyUser(ctx, "nobody@example.com", "anything")
	require.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestLinkOAuthBindingCreatesUserWhenNoneExists(t *testing.T) {
	svc, mock := setupService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "oauth_bindings"`).WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "oauth_bindings"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, err := svc.LinkOAuthBinding(ctx, "google", "acct-42", auth.Profile{Email: "new@example.com"}, auth.Tokens{AccessToken: "tok"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}
