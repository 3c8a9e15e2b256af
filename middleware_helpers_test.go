package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/goliatone/go-orgauth/middleware/jwtware"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextEnricherAdapter(t *testing.T) {
	t.Run("stores claims in the standard context", func(t *testing.T) {
		claims := claimsFor("user-1", auth.RoleUser)

		ctx := auth.ContextEnricherAdapter(context.Background(), claims)

		got, ok := auth.GetClaims(ctx)
		require.True(t, ok)
		assert.Equal(t, "user-1", got.UserID())
	})

	t.Run("foreign claim types pass through untouched", func(t *testing.T) {
		base := context.Background()
		ctx := auth.ContextEnricherAdapter(base, nil)
		assert.Equal(t, base, ctx)
	})
}

func TestRegisterValidationListeners(t *testing.T) {
	cfg := &jwtware.Config{}

	auth.RegisterValidationListeners(cfg, func(c router.Context, claims jwtware.AuthClaims) error {
		return nil
	})
	assert.Len(t, cfg.ValidationListeners, 1)

	auth.RegisterValidationListeners(cfg)
	assert.Len(t, cfg.ValidationListeners, 1)

	auth.RegisterValidationListeners(nil, func(c router.Context, claims jwtware.AuthClaims) error {
		return nil
	})
}
