package model

import (
	"time"

	"gorm.io/gorm"
)

// Module is a feature module that can be enabled per corporate.
type Module struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Slug        string         `json:"slug" gorm:"type:varchar(100);uniqueIndex"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Version     string         `json:"version,omitempty" gorm:"type:varchar(20)"`
	IsCore      bool           `json:"is_core" gorm:"default:false"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// CorporateModule links a module to a corporate with an enabled flag.
type CorporateModule struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CorporateID uint      `json:"corporate_id" gorm:"uniqueIndex:idx_corporate_module;not null"`
	ModuleID    uint      `json:"module_id" gorm:"uniqueIndex:idx_corporate_module;not null"`
	IsEnabled   bool      `json:"is_enabled" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Module Module `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
}
