package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/goliatone/go-orgauth/middleware/jwtware"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	identifier string
	password   string
}

func (p loginPayload) GetIdentifier() string { return p.identifier }
func (p loginPayload) GetPassword() string   { return p.password }

func TestNewHTTPAuthenticator(t *testing.T) {
	t.Run("requires an authenticator", func(t *testing.T) {
		got, err := auth.NewHTTPAuthenticator(nil, newTestConfig())
		assert.Nil(t, got)
		assert.Error(t, err)
	})

	t.Run("constructs with defaults", func(t *testing.T) {
		got, err := auth.NewHTTPAuthenticator(&MockAuthenticator{}, newTestConfig())
		require.NoError(t, err)
		assert.NotNil(t, got.ErrorHandler)
		assert.NotNil(t, got.AuthErrorHandler)
	})
}

func TestRouteAuthenticatorLogin(t *testing.T) {
	cfg := newTestConfig()

	t.Run("authenticates then mints", func(t *testing.T) {
		user := testSafeUser(auth.RoleUser)
		result := &auth.LoginResult{User: user, Token: "signed-token"}

		auther := &MockAuthenticator{}
		auther.On("Authenticate", mock.Anything, "test@example.com", "password123").Return(user, nil)
		auther.On("Login", mock.Anything, user).Return(result, nil)

		route, err := auth.NewHTTPAuthenticator(auther, cfg)
		require.NoError(t, err)
		route.Logger = NoopLogger{}

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())

		got, err := route.Login(ctx, loginPayload{"test@example.com", "password123"})
		require.NoError(t, err)
		assert.Equal(t, "signed-token", got.Token)
		auther.AssertExpectations(t)
	})

	t.Run("bad credentials stop before minting", func(t *testing.T) {
		auther := &MockAuthenticator{}
		auther.On("Authenticate", mock.Anything, "test@example.com", "wrong").Return(nil, auth.ErrInvalidCredentials)

		route, err := auth.NewHTTPAuthenticator(auther, cfg)
		require.NoError(t, err)
		route.Logger = NoopLogger{}

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())

		got, err := route.Login(ctx, loginPayload{"test@example.com", "wrong"})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		auther.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestMakeClientRouteAuthErrorHandler(t *testing.T) {
	cfg := newTestConfig()

	newRoute := func(t *testing.T) *auth.RouteAuthenticator {
		t.Helper()
		route, err := auth.NewHTTPAuthenticator(&MockAuthenticator{}, cfg)
		require.NoError(t, err)
		route.Logger = NoopLogger{}
		return route
	}

	t.Run("expired token renders 401 with its text code", func(t *testing.T) {
		route := newRoute(t)
		handler := route.MakeClientRouteAuthErrorHandler(false)

		var body map[string]any
		ctx := router.NewMockContext()
		ctx.On("OriginalURL").Return("/protected")
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]any)
		}).Return(nil)

		err := handler(ctx, auth.ErrTokenExpired)
		require.NoError(t, err)
		assert.Equal(t, "TOKEN_EXPIRED", body["text_code"])
	})

	t.Run("malformed token maps to its sentinel", func(t *testing.T) {
		route := newRoute(t)
		handler := route.MakeClientRouteAuthErrorHandler(false)

		var body map[string]any
		ctx := router.NewMockContext()
		ctx.On("OriginalURL").Return("/protected")
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]any)
		}).Return(nil)

		err := handler(ctx, jwtware.ErrJWTMissingOrMalformed)
		require.NoError(t, err)
		assert.Equal(t, "TOKEN_MALFORMED", body["text_code"])
	})

	t.Run("optional auth falls through to the next handler", func(t *testing.T) {
		route := newRoute(t)
		handler := route.MakeClientRouteAuthErrorHandler(true)

		ctx := router.NewMockContext()

		err := handler(ctx, auth.ErrTokenExpired)
		require.NoError(t, err)
		assert.True(t, ctx.NextCalled)
	})
}
