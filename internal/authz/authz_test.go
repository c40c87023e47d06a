package authz_test

import (
	"testing"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/authz"
	"pms-admin-service/internal/model"

	"github.com/stretchr/testify/require"
)

func TestCan_SuperAdminPassesEverything(t *testing.T) {
	require.NoError(t, authz.Can(model.RoleSuperAdminID, nil, authz.PermManageOrganizations))
	require.NoError(t, authz.Can(model.RoleSuperAdminID, nil, authz.PermManageUsers))
	require.NoError(t, authz.Can(model.RoleSuperAdminID, nil, "anything_at_all"))
}

func TestCan_RequiresAssignedPermission(t *testing.T) {
	perms := model.PermissionList{authz.PermManageUsers}

	require.NoError(t, authz.Can(model.RoleAdminID, perms, authz.PermManageUsers))

	err := authz.Can(model.RoleAdminID, perms, authz.PermManageOrganizations)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.From(err).Kind)
}

func TestCan_EmptySetDeniesAll(t *testing.T) {
	err := authz.Can(model.RoleUserID, model.PermissionList{}, authz.PermViewReports)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.From(err).Kind)
}

func TestDefaultPermissions(t *testing.T) {
	admin := authz.DefaultPermissions(model.RoleAdminID)
	require.True(t, admin.Contains(authz.PermManageUsers))
	require.True(t, admin.Contains(authz.PermManageRoles))
	require.True(t, admin.Contains(authz.PermManageSettings))
	require.True(t, admin.Contains(authz.PermViewReports))

	user := authz.DefaultPermissions(model.RoleUserID)
	require.Equal(t, model.PermissionList{authz.PermViewReports}, user)
	require.False(t, user.Contains(authz.PermManageUsers))

	require.Empty(t, authz.DefaultPermissions(model.RoleSuperAdminID))
}
