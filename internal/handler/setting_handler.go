package handler

import (
	"errors"
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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListSettings returns all of the caller's settings as a key -> typed value
// map.
func ListSettings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSettingOperation("list")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var settings []model.Setting
	result := database.GetDB().Where("user_id = ?", claims.UserID).Find(&settings)
	if result.Error != nil {
		log.Error("Failed to list settings", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	formatted := make(map[string]interface{}, len(settings))
	for _, s := range settings {
		formatted[s.Key] = s.DecodedValue()
	}

	return response.Success(c, formatted, "Settings retrieved")
}

// UpsertSettings writes each submitted key, overwriting existing values and
// re-inferring the stored type from the JSON value shape.
func UpsertSettings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSettingOperation("upsert")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	var req struct {
		Settings map[string]interface{} `json:"settings"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse settings request", zap.Error(err))
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}
	if len(req.Settings) == 0 {
		return response.Error(c, apperr.Validation(map[string][]string{
			"settings": {"The settings field is required"},
		}))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	updated := make(map[string]interface{}, len(req.Settings))
	for key, value := range req.Settings {
		setting := model.Setting{UserID: claims.UserID, Key: key}
		if err := setting.SetValue(value); err != nil {
			return response.Error(c, apperr.Validation(map[string][]string{
				key: {"The value could not be encoded"},
			}))
		}

		err := database.GetDB().Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
		}).Create(&setting).Error
		if err != nil {
			log.Error("Failed to upsert setting", zap.String("key", key), zap.Error(err))
			return response.Error(c, apperr.Internal(err))
		}

		updated[key] = setting.DecodedValue()
	}

	log.Info("Settings updated", zap.Uint("user_id", claims.UserID), zap.Int("count", len(updated)))
	return response.Success(c, updated, "Settings updated successfully")
}

// GetSetting returns a single setting by key.
func GetSetting(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSettingOperation("access")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	key := c.Param("key")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var setting model.Setting
	result := database.GetDB().
		Where("user_id = ? AND key = ?", claims.UserID, key).
		First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("Setting not found"))
		}
		log.Error("Failed to load setting", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	return response.Success(c, map[string]interface{}{key: setting.DecodedValue()}, "Setting retrieved")
}

// DeleteSetting removes a single setting by key.
func DeleteSetting(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSettingOperation("delete")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	key := c.Param("key")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().
		Where("user_id = ? AND key = ?", claims.UserID, key).
		Delete(&model.Setting{})
	if result.Error != nil {
		log.Error("Failed to delete setting", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}
	if result.RowsAffected == 0 {
		return response.Error(c, apperr.NotFound("Setting not found"))
	}

	log.Info("Setting deleted", zap.Uint("user_id", claims.UserID), zap.String("key", key))
	return response.Success(c, nil, "Setting deleted successfully")
}
