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

func setupRepo(t *testing.T) (*auth.Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return auth.NewRepository(gormDB), mock
}

func TestUserByEmailNotFoundTranslatesToSentinel(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows(nil))

	_, err := repo.UserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestBindingByProviderAccountAbsentReturnsNilNil(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_bindings"`).WillReturnRows(sqlmock.NewRows(nil))

	b, err := repo.BindingByProviderAccount(context.Background(), "google", "acct-1")
	require.NoError(t, err)
	require.Nil(t, b)
}
