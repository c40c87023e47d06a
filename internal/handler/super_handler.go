package handler

import (
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/response"
	"pms-admin-service/pkg/database"
	"pms-admin-service/pkg/logger"
	"pms-admin-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SuperLogin authenticates super admin accounts only.
func SuperLogin(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLogin("super")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse super login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return response.Error(c, apperr.Unauthorized("Invalid credentials"))
	}

	fields := fieldErrors{}
	fields.requireEmail("email", req.Email)
	fields.requireString("password", req.Password)
	if err := fields.err(); err != nil {
		return response.Error(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().
		Where("email = ? AND role_id = ?", req.Email, model.RoleSuperAdminID).
		First(&user)
	if result.Error != nil {
		log.Warn("Super login rejected", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return response.Error(c, invalidCredentials())
	}

	if err := authenticate(&user, req.Password); err != nil {
		log.Warn("Super login rejected", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return response.Error(c, err)
	}

	signed, expiresAt, err := tokens.Issue(&user)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return response.Error(c, apperr.Internal(err))
	}

	prometheus.IncreaseActiveTokens()
	log.Info("Super admin logged in", zap.String("email", user.Email))

	return response.Success(c, echo.Map{
		"user":       user,
		"token":      signed,
		"token_type": "bearer",
		"expires_in": int(time.Until(expiresAt).Seconds()),
	}, "Login successful")
}
