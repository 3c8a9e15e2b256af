package auth_test

import (
	"context"
	"database/sql"
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// setupTestDB opens an isolated in-memory sqlite database with the auth
// schema applied from the embedded migrations. Single connection: the
// database dies with it.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, auth.RunMigrations(context.Background(), db))

	return db
}

func setupRepoManager(t *testing.T) auth.RepositoryManager {
	t.Helper()
	return auth.NewRepositoryManager(setupTestDB(t))
}

// seedUser inserts a user with a pre-hashed password so tests do not pay the
// bcrypt cost per fixture.
func seedUser(t *testing.T, repo auth.RepositoryManager, email, passwordHash string, role auth.UserRole, active bool) *auth.User {
	t.Helper()

	user, err := repo.Users().Create(context.Background(), &auth.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     active,
	})
	require.NoError(t, err)
	return user
}
