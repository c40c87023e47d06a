package authz

import (
	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
)

// Permission strings checked before scope-sensitive operations.
const (
	PermManageOrganizations = "manage_organizations"
	PermManageUsers         = "manage_users"
	PermManageRoles         = "manage_roles"
	PermManageSettings      = "manage_settings"
	PermViewReports         = "view_reports"
)

// DefaultPermissions returns the permission set granted at provisioning time
// for a role. Organization admins get the tenant-management set, organization
// users are read-only.
func DefaultPermissions(roleID int) model.PermissionList {
	switch roleID {
	case model.RoleAdminID:
		return model.PermissionList{
			PermManageUsers,
			PermManageRoles,
			PermManageSettings,
			PermViewReports,
		}
	case model.RoleUserID:
		return model.PermissionList{PermViewReports}
	default:
		return model.PermissionList{}
	}
}

// Can decides whether an account may perform the requested action. Super
// admins pass every check; everyone else needs the permission in their
// assigned set. Policy is checked after scope resolution and before any
// data access.
func Can(roleID int, permissions model.PermissionList, permission string) error {
	if roleID == model.RoleSuperAdminID {
		return nil
	}
	if permissions.Contains(permission) {
		return nil
	}
	return apperr.Forbidden("Insufficient permissions")
}
