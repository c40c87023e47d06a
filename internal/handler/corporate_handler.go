package handler

import (
	"errors"
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/response"
	"pms-admin-service/pkg/database"
	"pms-admin-service/pkg/logger"
	"pms-admin-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetOrganizationByCode is the public pre-login existence check. It is
// deliberately unscoped, read-only, and returns only name, code and status.
func GetOrganizationByCode(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrganizationOperation("lookup")

	code := c.Param("code")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var corporate model.Corporate
	result := database.GetDB().Where("organization_code = ?", code).First(&corporate)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("No organization exists"))
		}
		log.Error("Failed to look up organization", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	if !corporate.IsOperational() {
		return response.Error(c, apperr.Forbidden("Please contact admin"))
	}

	return response.Success(c, echo.Map{
		"name":              corporate.Name,
		"organization_code": corporate.OrganizationCode,
		"status":            corporate.Status,
	}, "Organization retrieved")
}

// CorporateLogin authenticates an account within the organization resolved
// from the path's organization code. Only admin and user tiers qualify; the
// rejection message never reveals which check failed.
func CorporateLogin(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLogin("corporate")

	orgCode := c.Param("orgCode")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse corporate login request", zap.Error(err))
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
	var corporate model.Corporate
	result := database.GetDB().
		Where("organization_code = ? AND status = ?", orgCode, model.StatusActive).
		First(&corporate)
	if result.Error != nil {
		log.Warn("Corporate login rejected: organization unavailable", zap.String("org_code", orgCode))
		prometheus.RecordAuthError("invalid_credentials")
		return response.Error(c, invalidCredentials())
	}

	var user model.User
	result = database.GetDB().
		Where("email = ? AND corporate_id = ?", req.Email, corporate.ID).
		Where("role_id IN ?", []int{model.RoleAdminID, model.RoleUserID}).
		First(&user)
	if result.Error != nil {
		log.Warn("Corporate login rejected", zap.String("email", req.Email), zap.String("org_code", orgCode))
		prometheus.RecordAuthError("invalid_credentials")
		return response.Error(c, invalidCredentials())
	}

	if err := authenticate(&user, req.Password); err != nil {
		log.Warn("Corporate login rejected", zap.String("email", req.Email), zap.String("org_code", orgCode))
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
	log.Info("Corporate user logged in",
		zap.String("email", user.Email),
		zap.Uint("corporate_id", corporate.ID),
		zap.String("role", user.Role))

	return response.Success(c, echo.Map{
		"user":       user,
		"corporate":  corporate,
		"token":      signed,
		"token_type": "bearer",
		"expires_in": int(time.Until(expiresAt).Seconds()),
	}, "Corporate login successful")
}
