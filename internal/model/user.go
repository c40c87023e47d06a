package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role identifiers, in authority order
const (
	RoleSuperAdminID = 1
	RoleAdminID      = 2
	RoleUserID       = 3
)

// Role names carried in tokens and API payloads
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// PermissionList is a jsonb-backed list of permission strings.
type PermissionList []string

// Value implements driver.Valuer
func (p PermissionList) Value() (driver.Value, error) {
	if p == nil {
		p = PermissionList{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *PermissionList) Scan(value interface{}) error {
	if value == nil {
		*p = PermissionList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported type for PermissionList")
	}
}

// Contains reports whether the permission is in the list.
func (p PermissionList) Contains(permission string) bool {
	for _, v := range p {
		if v == permission {
			return true
		}
	}
	return false
}

// User represents an account. CorporateID is nil only for super admins and is
// set once at creation, never changed afterwards.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255)"`
	FirstName   string         `json:"first_name" gorm:"type:varchar(255)"`
	LastName    string         `json:"last_name" gorm:"type:varchar(255)"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_users_email,where:deleted_at IS NULL"`
	Password    string         `json:"-" gorm:"type:varchar(255)"`
	Mobile      string         `json:"mobile,omitempty" gorm:"type:varchar(20)"`
	Address     string         `json:"address,omitempty" gorm:"type:text"`
	Role        string         `json:"role" gorm:"type:varchar(20);default:'user'"`
	RoleID      int            `json:"role_id" gorm:"default:3"`
	Status      string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	CorporateID *uint          `json:"corporate_id,omitempty" gorm:"index"`
	Permissions PermissionList `json:"permissions" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Corporate *Corporate `json:"corporate,omitempty" gorm:"foreignKey:CorporateID"`
}

// IsSuperAdmin reports whether the user is a super admin.
func (u *User) IsSuperAdmin() bool {
	return u.RoleID == RoleSuperAdminID
}

// IsAdmin reports whether the user is an organization admin.
func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdminID
}

// IsActive reports whether the account can authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// SplitName backfills first/last name for accounts created before the name
// split existed.
func (u *User) SplitName() {
	if u.FirstName == "" && u.LastName == "" && u.Name != "" {
		parts := strings.SplitN(u.Name, " ", 2)
		u.FirstName = parts[0]
		if len(parts) > 1 {
			u.LastName = parts[1]
		}
	}
}

// RoleIDFor maps a role name to its identifier, defaulting to org user.
func RoleIDFor(role string) int {
	switch role {
	case RoleSuperAdmin:
		return RoleSuperAdminID
	case RoleAdmin:
		return RoleAdminID
	default:
		return RoleUserID
	}
}
