package database

import (
	"pms-admin-service/internal/model"
	"pms-admin-service/pkg/config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection from configuration.
func InitDB(cfg *config.Config) error {
	// Set default log level if not specified
	logLevel := cfg.DB.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	// PreferSimpleProtocol prevents "prepared statement already exists"
	// errors behind connection poolers
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	var err error
	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Surface unique-constraint violations as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}

	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}

	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	// AutoMigrate will automatically create or update the table structure
	// based on our models
	return DB.AutoMigrate(
		&model.User{},
		&model.Corporate{},
		&model.Setting{},
		&model.Module{},
		&model.CorporateModule{},
	)
}

// SeedSuperAdmin creates the super admin account from configuration if no
// account with that email exists yet.
func SeedSuperAdmin(cfg *config.Config) error {
	var count int64
	if err := DB.Model(&model.User{}).
		Where("email = ?", cfg.Provision.SuperAdminEmail).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Provision.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	superAdmin := model.User{
		Name:      "Super Admin",
		FirstName: "Super",
		LastName:  "Admin",
		Email:     cfg.Provision.SuperAdminEmail,
		Password:  string(hashed),
		Role:      model.RoleSuperAdmin,
		RoleID:    model.RoleSuperAdminID,
		Status:    model.StatusActive,
	}
	return DB.Create(&superAdmin).Error
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
