package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-orgauth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserTracker is a hand-rolled UserTracker so tests can script store
// behavior without a database.
type stubUserTracker struct {
	user     *auth.User
	getErr   error
	trackErr error
	tracked  int
}

func (s *stubUserTracker) GetByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.user, nil
}

func (s *stubUserTracker) TrackSuccessfulLogin(_ context.Context, user *auth.User) error {
	s.tracked++
	return s.trackErr
}

func TestVerifyIdentity(t *testing.T) {
	ctx := context.Background()
	password := "correct horse battery staple"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	activeUser := func() *auth.User {
		return &auth.User{
			ID:           uuid.New(),
			Email:        "test@example.com",
			PasswordHash: hash,
			Role:         auth.RoleUser,
			IsActive:     true,
		}
	}

	t.Run("valid credentials", func(t *testing.T) {
		store := &stubUserTracker{user: activeUser()}
		provider := auth.NewUserProvider(store).WithLogger(NoopLogger{})

		got, err := provider.VerifyIdentity(ctx, "test@example.com", password)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "test@example.com", got.Email)
		assert.Equal(t, 1, store.tracked)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		missing := &stubUserTracker{getErr: repository.NewRecordNotFound()}
		provider := auth.NewUserProvider(missing).WithLogger(NoopLogger{})
		_, errMissing := provider.VerifyIdentity(ctx, "nobody@example.com", password)

		mismatch := &stubUserTracker{user: activeUser()}
		provider = auth.NewUserProvider(mismatch).WithLogger(NoopLogger{})
		_, errMismatch := provider.VerifyIdentity(ctx, "test@example.com", "wrong password")

		assert.ErrorIs(t, errMissing, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errMismatch, auth.ErrInvalidCredentials)
		assert.Equal(t, errMissing.Error(), errMismatch.Error())
	})

	t.Run("inactive account disclosed only after credentials check out", func(t *testing.T) {
		user := activeUser()
		user.IsActive = false
		store := &stubUserTracker{user: user}
		provider := auth.NewUserProvider(store).WithLogger(NoopLogger{})

		_, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, err = provider.VerifyIdentity(ctx, "test@example.com", password)
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("store failure is not folded into invalid credentials", func(t *testing.T) {
		store := &stubUserTracker{getErr: goerrors.New("connection refused", goerrors.CategoryInternal)}
		provider := auth.NewUserProvider(store).WithLogger(NoopLogger{})

		_, err := provider.VerifyIdentity(ctx, "test@example.com", password)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("tracking failure does not block the login", func(t *testing.T) {
		store := &stubUserTracker{
			user:     activeUser(),
			trackErr: goerrors.New("write timeout", goerrors.CategoryOperation),
		}
		provider := auth.NewUserProvider(store).WithLogger(NoopLogger{})

		got, err := provider.VerifyIdentity(ctx, "test@example.com", password)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("nil user without error still fails closed", func(t *testing.T) {
		store := &stubUserTracker{}
		provider := auth.NewUserProvider(store).WithLogger(NoopLogger{})

		_, err := provider.VerifyIdentity(ctx, "test@example.com", password)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestFindIdentityByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := &stubUserTracker{user: &auth.User{
			ID:    uuid.New(),
			Email: "test@example.com",
			Role:  auth.RoleAdmin,
		}}
		provider := auth.NewUserProvider(store).WithLogger(NoopLogger{})

		got, err := provider.FindIdentityByEmail(ctx, "test@example.com")
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", got.Email)
	})

	t.Run("nil user maps to ErrUserNotFound", func(t *testing.T) {
		provider := auth.NewUserProvider(&stubUserTracker{}).WithLogger(NoopLogger{})

		got, err := provider.FindIdentityByEmail(ctx, "nobody@example.com")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("store error surfaces as-is", func(t *testing.T) {
		boom := goerrors.New("connection refused", goerrors.CategoryInternal)
		provider := auth.NewUserProvider(&stubUserTracker{getErr: boom}).WithLogger(NoopLogger{})

		_, err := provider.FindIdentityByEmail(ctx, "test@example.com")
		assert.ErrorIs(t, err, boom)
	})
}
