package middleware

import (
	"errors"
	"strings"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/authz"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/response"
	"pms-admin-service/internal/scope"
	"pms-admin-service/internal/token"
	"pms-admin-service/pkg/database"
	"pms-admin-service/pkg/logger"
	"pms-admin-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context keys set by the middleware chain
const (
	ClaimsKey = "claims"
	ScopeKey  = "scope"
)

// Auth validates the bearer token from the Authorization header and stores
// the verified claims in the request context.
func Auth(tm *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return response.Error(c, apperr.Unauthorized("Missing authorization token"))
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return response.Error(c, apperr.Unauthorized("Invalid authorization format, expected Bearer token"))
			}

			claims, err := tm.Verify(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return response.Error(c, err)
			}

			c.Set(ClaimsKey, claims)
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)

			return next(c)
		}
	}
}

// OrgScope resolves the effective tenant scope from the verified claims and,
// when the route carries one, the organization code path parameter. Must run
// after Auth.
func OrgScope(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims, ok := c.Get(ClaimsKey).(*token.Claims)
		if !ok {
			prometheus.RecordAuthError("missing_claims")
			return response.Error(c, apperr.Unauthorized("Authentication required"))
		}

		sc, err := scope.Resolve(claims, c.Param("orgCode"), LookupCorporateCode)
		if err != nil {
			log.Warn("Scope resolution rejected request",
				zap.Uint("user_id", claims.UserID),
				zap.String("org_code", c.Param("orgCode")),
				zap.Error(err))
			prometheus.RecordAuthError("scope_mismatch")
			return response.Error(c, err)
		}

		c.Set(ScopeKey, sc)
		return next(c)
	}
}

// RequirePermission allows the request only if the account's assigned
// permission set covers the action. Super admins pass every check.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			claims, ok := c.Get(ClaimsKey).(*token.Claims)
			if !ok {
				prometheus.RecordAuthError("missing_claims")
				return response.Error(c, apperr.Unauthorized("Authentication required"))
			}

			var permissions model.PermissionList
			if claims.RoleID != model.RoleSuperAdminID {
				var user model.User
				if err := database.GetDB().Select("permissions").First(&user, claims.UserID).Error; err != nil {
					log.Error("Failed to load account permissions", zap.Error(err))
					prometheus.RecordAuthError("permission_lookup_failed")
					return response.Error(c, apperr.Unauthorized("Authentication required"))
				}
				permissions = user.Permissions
			}

			if err := authz.Can(claims.RoleID, permissions, permission); err != nil {
				log.Warn("Permission denied",
					zap.Uint("user_id", claims.UserID),
					zap.String("permission", permission))
				prometheus.RecordAuthError("permission_denied")
				return response.Error(c, err)
			}

			return next(c)
		}
	}
}

// RequireSuperAdmin restricts a route group to super admin tokens.
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(ClaimsKey).(*token.Claims)
		if !ok {
			prometheus.RecordAuthError("missing_claims")
			return response.Error(c, apperr.Unauthorized("Authentication required"))
		}
		if claims.RoleID != model.RoleSuperAdminID {
			prometheus.RecordAuthError("super_admin_required")
			return response.Error(c, apperr.Forbidden("Insufficient permissions"))
		}
		return next(c)
	}
}

// LookupCorporateCode resolves an organization code to its live corporate
// id. Used by scope resolution; intentionally unscoped and read-only.
func LookupCorporateCode(code string) (uint, error) {
	var corporate model.Corporate
	err := database.GetDB().Select("id").
		Where("organization_code = ?", code).
		First(&corporate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("No organization exists")
		}
		return 0, apperr.Internal(err)
	}
	return corporate.ID, nil
}

// ScopeFromContext returns the resolved scope set by OrgScope.
func ScopeFromContext(c echo.Context) (scope.Scope, bool) {
	sc, ok := c.Get(ScopeKey).(scope.Scope)
	return sc, ok
}

// ClaimsFromContext returns the verified claims set by Auth.
func ClaimsFromContext(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*token.Claims)
	return claims, ok
}
