package scope

import (
	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/token"

	"gorm.io/gorm"
)

// Scope is the effective tenant boundary of a request. It is resolved once
// per request from verified claims and passed explicitly down the call
// chain; nothing request-scoped is ever stored globally.
type Scope struct {
	Global      bool
	CorporateID uint
	Role        string
	RoleID      int
}

// CorporateLookup resolves an organization code to its live corporate id.
// Implementations must return apperr.NotFound when no live corporate carries
// the code.
type CorporateLookup func(code string) (uint, error)

// Resolve determines the effective scope for verified claims and an optional
// organization code taken from the request path.
//
// Super admins are global regardless of path. For everyone else the
// corporate id embedded in the claims is authoritative: a path-supplied code
// that resolves to a different corporate is rejected, so a token issued
// under one organization can never be replayed against another's URLs.
func Resolve(claims *token.Claims, orgCode string, lookup CorporateLookup) (Scope, error) {
	if claims.RoleID == model.RoleSuperAdminID {
		return Scope{Global: true, Role: claims.Role, RoleID: claims.RoleID}, nil
	}

	if claims.CorporateID == nil {
		return Scope{}, apperr.Forbidden("Account is not associated with an organization")
	}

	sc := Scope{
		CorporateID: *claims.CorporateID,
		Role:        claims.Role,
		RoleID:      claims.RoleID,
	}

	if orgCode != "" {
		corporateID, err := lookup(orgCode)
		if err != nil {
			return Scope{}, err
		}
		if corporateID != sc.CorporateID {
			return Scope{}, apperr.Forbidden("Access denied")
		}
	}

	return sc, nil
}

// Users intersects a user query with the scope. Foreign-tenant rows become
// invisible; global scope adds no filter.
func (s Scope) Users(db *gorm.DB) *gorm.DB {
	return s.Filter(db, "corporate_id")
}

// Corporates intersects a corporate query with the scope.
func (s Scope) Corporates(db *gorm.DB) *gorm.DB {
	if s.Global {
		return db
	}
	return db.Where("id = ?", s.CorporateID)
}

// Filter intersects any query with the scope using the given tenant column.
func (s Scope) Filter(db *gorm.DB, column string) *gorm.DB {
	if s.Global {
		return db
	}
	return db.Where(column+" = ?", s.CorporateID)
}

// Allows reports whether the scope covers the given corporate id.
func (s Scope) Allows(corporateID uint) bool {
	return s.Global || s.CorporateID == corporateID
}
