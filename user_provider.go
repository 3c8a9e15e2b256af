package auth

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// UserTracker is the slice of the credential store the provider needs.
type UserTracker interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// UserProvider resolves identities against the user store.
type UserProvider struct {
	store  UserTracker
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

var (
	enumerationGuardOnce sync.Once
	enumerationGuardHash string
)

// enumerationGuard is a throwaway digest compared against when the email does
// not resolve, so a miss costs the same bcrypt work as a mismatch.
func enumerationGuard() string {
	enumerationGuardOnce.Do(func() {
		enumerationGuardHash = RandomPasswordHash()
	})
	return enumerationGuardHash
}

// VerifyIdentity will find the user, compare the password, and return the
// wire-safe projection. A missing user and a wrong password yield the same
// error, and the lastLoginAt write is best-effort: its failure is logged,
// never surfaced, so an audit hiccup cannot block a login.
func (u UserProvider) VerifyIdentity(ctx context.Context, email, password string) (*SafeUser, error) {
	user, err := u.store.GetByIdentifier(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			_ = ComparePasswordAndHash(password, enumerationGuard())
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		_ = ComparePasswordAndHash(password, enumerationGuard())
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify password")
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Warn("failed to track successful login", "error", err, "user_id", user.ID.String())
	}

	return NewSafeUser(user), nil
}

// FindIdentityByEmail resolves a user projection without touching credentials.
func (u UserProvider) FindIdentityByEmail(ctx context.Context, email string) (*SafeUser, error) {
	user, err := u.store.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrUserNotFound
	}

	return NewSafeUser(user), nil
}

var _ IdentityProvider = (*UserProvider)(nil)
