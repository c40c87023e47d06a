package scope_test

import (
	"testing"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/scope"
	"pms-admin-service/internal/token"

	"github.com/stretchr/testify/require"
)

func lookupTable(codes map[string]uint) scope.CorporateLookup {
	return func(code string) (uint, error) {
		if id, ok := codes[code]; ok {
			return id, nil
		}
		return 0, apperr.NotFound("No organization exists")
	}
}

func orgClaims(corporateID uint, roleID int, role string) *token.Claims {
	return &token.Claims{
		UserID:      1,
		CorporateID: &corporateID,
		Role:        role,
		RoleID:      roleID,
	}
}

func TestResolve_SuperAdminIsGlobal(t *testing.T) {
	claims := &token.Claims{UserID: 1, Role: model.RoleSuperAdmin, RoleID: model.RoleSuperAdminID}

	t.Run("without path code", func(t *testing.T) {
		sc, err := scope.Resolve(claims, "", lookupTable(nil))
		require.NoError(t, err)
		require.True(t, sc.Global)
	})

	t.Run("path code is ignored", func(t *testing.T) {
		sc, err := scope.Resolve(claims, "ACME", lookupTable(nil))
		require.NoError(t, err)
		require.True(t, sc.Global)
	})
}

func TestResolve_ClaimsCorporateIsAuthoritative(t *testing.T) {
	claims := orgClaims(10, model.RoleAdminID, model.RoleAdmin)
	lookup := lookupTable(map[string]uint{"ACME": 10, "GLOBEX": 20})

	t.Run("no path code", func(t *testing.T) {
		sc, err := scope.Resolve(claims, "", lookup)
		require.NoError(t, err)
		require.False(t, sc.Global)
		require.Equal(t, uint(10), sc.CorporateID)
		require.Equal(t, model.RoleAdmin, sc.Role)
	})

	t.Run("matching path code", func(t *testing.T) {
		sc, err := scope.Resolve(claims, "ACME", lookup)
		require.NoError(t, err)
		require.Equal(t, uint(10), sc.CorporateID)
	})

	t.Run("foreign path code is forbidden", func(t *testing.T) {
		_, err := scope.Resolve(claims, "GLOBEX", lookup)
		require.Error(t, err)
		require.Equal(t, apperr.KindForbidden, apperr.From(err).Kind)
	})

	t.Run("unknown path code", func(t *testing.T) {
		_, err := scope.Resolve(claims, "NOPE", lookup)
		require.Error(t, err)
		require.Equal(t, apperr.KindNotFound, apperr.From(err).Kind)
	})
}

func TestResolve_OrgUserWithoutCorporateIsForbidden(t *testing.T) {
	claims := &token.Claims{UserID: 1, Role: model.RoleUser, RoleID: model.RoleUserID}

	_, err := scope.Resolve(claims, "", lookupTable(nil))
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.From(err).Kind)
}

func TestScope_Allows(t *testing.T) {
	global := scope.Scope{Global: true}
	require.True(t, global.Allows(1))
	require.True(t, global.Allows(999))

	tenant := scope.Scope{CorporateID: 10}
	require.True(t, tenant.Allows(10))
	require.False(t, tenant.Allows(11))
}
