package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role for registered accounts
	RoleUser UserRole = "user"
	// RoleAdmin can manage organizations and their members
	RoleAdmin UserRole = "admin"
	// RoleSuperAdmin can manage everything, across organizations
	RoleSuperAdmin UserRole = "super_admin"
)

// User is the user model. The password hash never serializes: the JSON tag is
// the last line of defense, SafeUser is the projection handed to callers.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	FirstName      string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	IsActive       bool       `bun:"is_active" json:"is_active"`
	OrganizationID *uuid.UUID `bun:"organization_id,nullzero,type:uuid" json:"organization_id,omitempty"`
	LastLoginAt    *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Organization groups users by reference: members are the users whose
// organization_id points here, the organization does not own them.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string         `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string         `bun:"description" json:"description,omitempty"`
	IsActive      bool           `bun:"is_active" json:"is_active"`
	Settings      map[string]any `bun:"settings,type:jsonb" json:"settings,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AddSetting will append information to the settings attribute
func (o *Organization) AddSetting(key string, val any) *Organization {
	if o.Settings == nil {
		o.Settings = make(map[string]any)
	}
	o.Settings[key] = val
	return o
}

// SafeUser is a User projection with the password digest stripped, safe to
// return over the wire.
type SafeUser struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Role           UserRole   `json:"user_role"`
	IsActive       bool       `json:"is_active"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// NewSafeUser projects a stored user record into its wire-safe shape.
func NewSafeUser(user *User) *SafeUser {
	if user == nil {
		return nil
	}

	return &SafeUser{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		IsActive:       user.IsActive,
		OrganizationID: user.OrganizationID,
		LastLoginAt:    user.LastLoginAt,
	}
}
