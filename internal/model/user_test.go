package model_test

import (
	"testing"

	"pms-admin-service/internal/model"

	"github.com/stretchr/testify/require"
)

func TestUser_RoleHelpers(t *testing.T) {
	super := model.User{RoleID: model.RoleSuperAdminID}
	require.True(t, super.IsSuperAdmin())
	require.False(t, super.IsAdmin())

	admin := model.User{RoleID: model.RoleAdminID}
	require.False(t, admin.IsSuperAdmin())
	require.True(t, admin.IsAdmin())
}

func TestUser_IsActive(t *testing.T) {
	require.True(t, (&model.User{Status: model.StatusActive}).IsActive())
	require.False(t, (&model.User{Status: model.StatusInactive}).IsActive())
	require.False(t, (&model.User{}).IsActive())
}

func TestUser_SplitName(t *testing.T) {
	t.Run("splits full name", func(t *testing.T) {
		u := model.User{Name: "Jane Doe"}
		u.SplitName()
		require.Equal(t, "Jane", u.FirstName)
		require.Equal(t, "Doe", u.LastName)
	})

	t.Run("single word name", func(t *testing.T) {
		u := model.User{Name: "Jane"}
		u.SplitName()
		require.Equal(t, "Jane", u.FirstName)
		require.Empty(t, u.LastName)
	})

	t.Run("extra words stay in last name", func(t *testing.T) {
		u := model.User{Name: "Jane van der Berg"}
		u.SplitName()
		require.Equal(t, "Jane", u.FirstName)
		require.Equal(t, "van der Berg", u.LastName)
	})

	t.Run("existing split is kept", func(t *testing.T) {
		u := model.User{Name: "Jane Doe", FirstName: "J", LastName: "D"}
		u.SplitName()
		require.Equal(t, "J", u.FirstName)
		require.Equal(t, "D", u.LastName)
	})
}

func TestRoleIDFor(t *testing.T) {
	require.Equal(t, model.RoleSuperAdminID, model.RoleIDFor(model.RoleSuperAdmin))
	require.Equal(t, model.RoleAdminID, model.RoleIDFor(model.RoleAdmin))
	require.Equal(t, model.RoleUserID, model.RoleIDFor(model.RoleUser))
	require.Equal(t, model.RoleUserID, model.RoleIDFor("unknown"))
}

func TestPermissionList_ValueAndScan(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		perms := model.PermissionList{"manage_users", "view_reports"}
		raw, err := perms.Value()
		require.NoError(t, err)

		var scanned model.PermissionList
		require.NoError(t, scanned.Scan(raw))
		require.Equal(t, perms, scanned)
	})

	t.Run("nil list marshals as empty array", func(t *testing.T) {
		var perms model.PermissionList
		raw, err := perms.Value()
		require.NoError(t, err)
		require.JSONEq(t, `[]`, string(raw.([]byte)))
	})

	t.Run("scan nil", func(t *testing.T) {
		var perms model.PermissionList
		require.NoError(t, perms.Scan(nil))
		require.Empty(t, perms)
	})

	t.Run("scan string", func(t *testing.T) {
		var perms model.PermissionList
		require.NoError(t, perms.Scan(`["manage_settings"]`))
		require.Equal(t, model.PermissionList{"manage_settings"}, perms)
	})

	t.Run("scan unsupported type", func(t *testing.T) {
		var perms model.PermissionList
		require.Error(t, perms.Scan(42))
	})
}

func TestPermissionList_Contains(t *testing.T) {
	perms := model.PermissionList{"manage_users"}
	require.True(t, perms.Contains("manage_users"))
	require.False(t, perms.Contains("manage_roles"))
	require.False(t, model.PermissionList(nil).Contains("manage_users"))
}
