package auth

// UserIdentity adapts a SafeUser into the Identity interface for token
// generation.
type UserIdentity struct {
	user *SafeUser
}

// NewIdentityFromUser returns an Identity adapter for the provided user
// projection.
func NewIdentityFromUser(user *SafeUser) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// Role returns the user's role as a string.
func (u UserIdentity) Role() string {
	if u.user == nil {
		return ""
	}
	return string(u.user.Role)
}
