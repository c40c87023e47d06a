package main

import (
	"pms-admin-service/internal/authz"
	"pms-admin-service/internal/handler"
	"pms-admin-service/internal/middleware"
	"pms-admin-service/internal/token"
	"pms-admin-service/pkg/config"
	"pms-admin-service/pkg/database"
	"pms-admin-service/pkg/logger"
	"pms-admin-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting admin service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.SeedSuperAdmin(cfg); err != nil {
		log.Fatal("Failed to seed super admin account", zap.Error(err))
	}

	// Initialize token manager and wire it into the handlers
	tokens := token.NewManager(&cfg.JWT)
	handler.Init(tokens, cfg)
	log.Info("Token manager initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
	}))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	v1 := e.Group("/api/v1")

	// Authentication routes - public
	auth := v1.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout, middleware.Auth(tokens))
	auth.POST("/refresh", handler.Refresh, middleware.Auth(tokens))
	auth.GET("/me", handler.Me, middleware.Auth(tokens))

	// Super admin login
	v1.POST("/super/login", handler.SuperLogin)

	// Public organization existence check used by the corporate login page
	v1.GET("/organization/:code", handler.GetOrganizationByCode)

	// Tenant-scoped login by organization code
	v1.POST("/:orgCode/login", handler.CorporateLogin)

	// Super admin organization management
	organizations := v1.Group("/organizations")
	organizations.Use(middleware.Auth(tokens), middleware.RequireSuperAdmin)
	organizations.GET("", handler.ListOrganizations)
	organizations.POST("", handler.CreateOrganization)
	organizations.GET("/:id", handler.GetOrganization)
	organizations.PUT("/:id", handler.UpdateOrganization)
	organizations.DELETE("/:id", handler.DeleteOrganization)

	// Organization user management - tenant scoped
	orgUsers := v1.Group("/organization/:orgId/users")
	orgUsers.Use(middleware.Auth(tokens), middleware.OrgScope)
	orgUsers.GET("", handler.ListOrgUsers, middleware.RequirePermission(authz.PermViewReports))
	orgUsers.POST("", handler.CreateOrgUser, middleware.RequirePermission(authz.PermManageUsers))
	orgUsers.PUT("/:id", handler.UpdateOrgUser, middleware.RequirePermission(authz.PermManageUsers))
	orgUsers.DELETE("/:id", handler.DeleteOrgUser, middleware.RequirePermission(authz.PermManageUsers))

	// Feature modules enabled for an organization
	v1.GET("/organization/:orgId/modules", handler.ListOrgModules,
		middleware.Auth(tokens), middleware.OrgScope)

	// Per-account settings
	settings := v1.Group("/settings")
	settings.Use(middleware.Auth(tokens))
	settings.GET("", handler.ListSettings)
	settings.POST("", handler.UpsertSettings)
	settings.GET("/:key", handler.GetSetting)
	settings.DELETE("/:key", handler.DeleteSetting)

	// Dashboards
	v1.GET("/super/dashboard", handler.SuperDashboard,
		middleware.Auth(tokens), middleware.RequireSuperAdmin)
	v1.GET("/dashboard", handler.CorporateDashboard,
		middleware.Auth(tokens), middleware.OrgScope)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
