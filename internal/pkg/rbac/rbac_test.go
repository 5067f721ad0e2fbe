package rbac

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAuthorizer(t *testing.T) {
	authz, err := NewDefaultAuthorizer()
	require.NoError(t, err)

	tests := []struct {
		role user.Role
		perm user.Permission
		want bool
	}{
		{user.RoleAdmin, user.PermissionEmployeeViewAll, true},
		{user.RoleAdmin, user.PermissionEmployeeManage, true},
		{user.RoleAdmin, user.PermissionPayrollManage, true},
		{user.RoleAdmin, user.PermissionDashboardAdmin, true},
		{user.RoleAdmin, user.PermissionPayrollViewOwn, true},
		{user.RoleAdmin, user.PermissionDashboardEmployee, false},
		{user.RoleEmployee, user.PermissionViewOwnProfile, true},
		{user.RoleEmployee, user.PermissionEditOwnProfile, true},
		{user.RoleEmployee, user.PermissionPayrollViewOwn, true},
		{user.RoleEmployee, user.PermissionDashboardEmployee, true},
		{user.RoleEmployee, user.PermissionEmployeeViewAll, false},
		{user.RoleEmployee, user.PermissionPayrollManage, false},
		{user.Role("auditor"), user.PermissionViewOwnProfile, false},
		{user.Role(""), user.PermissionViewOwnProfile, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			got, err := authz.Can(tt.role, tt.perm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPermissions_MatchesSeed(t *testing.T) {
	authz, err := NewDefaultAuthorizer()
	require.NoError(t, err)

	for role, want := range user.RolePermissions {
		got, err := authz.Permissions(role)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, got, string(role))
	}

	none, err := authz.Permissions(user.Role("ghost"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNewAuthorizer_Empty(t *testing.T) {
	authz, err := NewAuthorizer(nil)
	require.NoError(t, err)

	ok, err := authz.Can(user.RoleAdmin, user.PermissionEmployeeManage)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubjectFromRole(t *testing.T) {
	assert.Equal(t, "role:admin", SubjectFromRole(user.RoleAdmin))
	assert.Equal(t, "role:employee", SubjectFromRole(" Employee "))
	assert.Equal(t, "role:anonymous", SubjectFromRole(""))
}
