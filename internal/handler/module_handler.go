package handler

import (
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/middleware"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/response"
	"pms-admin-service/pkg/database"
	"pms-admin-service/pkg/logger"
	"pms-admin-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListOrgModules returns the feature modules enabled for the scoped
// organization. Core modules are always included.
func ListOrgModules(c echo.Context) error {
	log := logger.FromContext(c)

	sc, ok := middleware.ScopeFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	corporate, err := scopedCorporate(c, sc)
	if err != nil {
		return response.Error(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var core []model.Module
	if err := database.GetDB().
		Where("is_core = ? AND is_active = ?", true, true).
		Find(&core).Error; err != nil {
		log.Error("Failed to list core modules", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	var enabled []model.CorporateModule
	if err := database.GetDB().
		Preload("Module").
		Where("corporate_id = ? AND is_enabled = ?", corporate.ID, true).
		Find(&enabled).Error; err != nil {
		log.Error("Failed to list organization modules", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	modules := make([]model.Module, 0, len(core)+len(enabled))
	seen := make(map[uint]bool, len(core))
	for _, m := range core {
		modules = append(modules, m)
		seen[m.ID] = true
	}
	for _, cm := range enabled {
		if !seen[cm.ModuleID] && cm.Module.IsActive {
			modules = append(modules, cm.Module)
		}
	}

	return response.Success(c, echo.Map{
		"modules":           modules,
		"organization_name": corporate.Name,
	}, "Organization modules retrieved")
}
