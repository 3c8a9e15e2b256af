package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	auth "github.com/goliatone/go-orgauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONNeverLeaksPasswordHash(t *testing.T) {
	user := &auth.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: "$2a$14$secret",
		Role:         auth.RoleUser,
		IsActive:     true,
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
}

func TestNewSafeUser(t *testing.T) {
	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, auth.NewSafeUser(nil))
	})

	t.Run("projects everything but the digest", func(t *testing.T) {
		orgID := uuid.New()
		lastLogin := time.Now()
		user := &auth.User{
			ID:             uuid.New(),
			Email:          "test@example.com",
			PasswordHash:   "$2a$14$secret",
			FirstName:      "Test",
			LastName:       "User",
			Role:           auth.RoleAdmin,
			IsActive:       true,
			OrganizationID: &orgID,
			LastLoginAt:    &lastLogin,
		}

		safe := auth.NewSafeUser(user)
		assert.Equal(t, user.ID, safe.ID)
		assert.Equal(t, user.Email, safe.Email)
		assert.Equal(t, user.FirstName, safe.FirstName)
		assert.Equal(t, user.LastName, safe.LastName)
		assert.Equal(t, user.Role, safe.Role)
		assert.True(t, safe.IsActive)
		assert.Equal(t, &orgID, safe.OrganizationID)
		assert.Equal(t, &lastLogin, safe.LastLoginAt)
	})
}

func TestIdentityAdapter(t *testing.T) {
	t.Run("nil user yields nil identity", func(t *testing.T) {
		assert.Nil(t, auth.NewIdentityFromUser(nil))
	})

	t.Run("adapts the projection", func(t *testing.T) {
		user := &auth.SafeUser{
			ID:    uuid.New(),
			Email: "test@example.com",
			Role:  auth.RoleAdmin,
		}

		identity := auth.NewIdentityFromUser(user)
		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "test@example.com", identity.Email())
		assert.Equal(t, "admin", identity.Role())
	})
}
