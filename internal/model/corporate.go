package model

import (
	"time"

	"gorm.io/gorm"
)

// Corporate statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Corporate represents an organization (tenant). Every non-super-admin user
// and all of their data belong to exactly one corporate.
type Corporate struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"type:varchar(255);not null"`
	Slug              string         `json:"slug" gorm:"type:varchar(255);index"`
	Email             string         `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_corporates_email,where:deleted_at IS NULL"`
	Phone             string         `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Address           string         `json:"address,omitempty" gorm:"type:text"`
	Logo              string         `json:"logo,omitempty" gorm:"type:varchar(255)"`
	OrganizationCode  string         `json:"organization_code" gorm:"type:varchar(50);uniqueIndex:idx_corporates_code,where:deleted_at IS NULL"`
	UserAllowed       int            `json:"user_allowed" gorm:"default:1"`
	ValidFrom         *time.Time     `json:"valid_from,omitempty"`
	ValidTo           *time.Time     `json:"valid_to,omitempty"`
	Status            string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastPaymentDate   *time.Time     `json:"last_payment_date,omitempty"`
	LastPaymentAmount float64        `json:"last_payment_amount" gorm:"type:numeric(10,2);default:0"`
	Settings          string         `json:"settings,omitempty" gorm:"type:jsonb;default:'{}'"`
	IsActive          bool           `json:"is_active" gorm:"default:true"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Populated by list/show queries via a users_count subquery, not a
	// column; read-only so writes never reference it
	UsersCount int64 `json:"users_count" gorm:"->;-:migration"`
}

// IsOperational reports whether the corporate can serve logins.
func (c *Corporate) IsOperational() bool {
	return c.Status == StatusActive
}
