package auth_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsFS(t *testing.T) {
	entries, err := fs.ReadDir(auth.GetMigrationsFS(), "data/sql/migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"),
			"unexpected migration file %q", entry.Name())
	}
}

func TestRunMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := auth.NewRepositoryManager(db)

	t.Run("schema is usable after migrating", func(t *testing.T) {
		org, err := repo.Organizations().Create(ctx, &auth.Organization{Name: "Migrated Co"})
		require.NoError(t, err)

		user := seedUser(t, repo, "migrated@example.com", "x", auth.RoleUser, true)
		require.NoError(t, repo.Users().SetOrganization(ctx, user.ID, &org.ID))

		members, err := repo.Users().FindByOrganization(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, "migrated@example.com", members[0].Email)
	})

	t.Run("already applied migrations are skipped", func(t *testing.T) {
		require.NoError(t, auth.RunMigrations(ctx, db))
	})

	t.Run("unique indexes survive the migration", func(t *testing.T) {
		_, err := repo.Organizations().Create(ctx, &auth.Organization{
			ID:   uuid.New(),
			Name: "Migrated Co",
		})
		require.Error(t, err)
	})
}
