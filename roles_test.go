package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, auth.IsValidRole(auth.RoleUser))
	assert.True(t, auth.IsValidRole(auth.RoleAdmin))
	assert.True(t, auth.IsValidRole(auth.RoleSuperAdmin))
	assert.False(t, auth.IsValidRole("owner"))
	assert.False(t, auth.IsValidRole(""))
}

func TestIsElevatedRole(t *testing.T) {
	assert.False(t, auth.IsElevatedRole(auth.RoleUser))
	assert.True(t, auth.IsElevatedRole(auth.RoleAdmin))
	assert.True(t, auth.IsElevatedRole(auth.RoleSuperAdmin))
	assert.False(t, auth.IsElevatedRole("owner"))
}

func TestRoleIsAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		role    auth.UserRole
		minRole auth.UserRole
		want    bool
	}{
		{"user meets user", auth.RoleUser, auth.RoleUser, true},
		{"user below admin", auth.RoleUser, auth.RoleAdmin, false},
		{"admin meets user", auth.RoleAdmin, auth.RoleUser, true},
		{"admin below super admin", auth.RoleAdmin, auth.RoleSuperAdmin, false},
		{"super admin meets everything", auth.RoleSuperAdmin, auth.RoleAdmin, true},
		{"unknown role fails", "owner", auth.RoleUser, false},
		{"unknown min fails", auth.RoleSuperAdmin, "owner", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.RoleIsAtLeast(tt.role, tt.minRole))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("owner")
	assert.False(t, ok)
}

func TestRoleNames(t *testing.T) {
	assert.Equal(t,
		[]string{"admin", "super_admin"},
		auth.RoleNames([]auth.UserRole{auth.RoleAdmin, auth.RoleSuperAdmin}),
	)
	assert.Empty(t, auth.RoleNames(nil))
}

func TestGetAllRoles(t *testing.T) {
	roles := auth.GetAllRoles()
	assert.Equal(t, []auth.UserRole{auth.RoleUser, auth.RoleAdmin, auth.RoleSuperAdmin}, roles)
}
