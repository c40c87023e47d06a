package handler

import (
	"errors"
	"strings"
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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// invalidCredentials is the uniform rejection for every login failure mode.
// Missing account, wrong password and inactive status are indistinguishable
// so accounts cannot be enumerated.
func invalidCredentials() error {
	return apperr.Unauthorized("Invalid credentials")
}

// Login authenticates any account tier by email and password.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLogin("generic")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return response.Error(c, apperr.Unauthorized("Invalid credentials"))
	}

	fields := fieldErrors{}
	fields.requireEmail("email", req.Email)
	fields.requireString("password", req.Password)
	if req.Password != "" {
		fields.requireMinLen("password", req.Password, 6)
	}
	if err := fields.err(); err != nil {
		return response.Error(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("Login rejected", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return response.Error(c, invalidCredentials())
	}

	if err := authenticate(&user, req.Password); err != nil {
		log.Warn("Login rejected", zap.String("email", req.Email))
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
	log.Info("User logged in", zap.String("email", user.Email), zap.String("role", user.Role))

	return response.Success(c, echo.Map{
		"user":       user,
		"token":      signed,
		"token_type": "bearer",
		"expires_in": int(time.Until(expiresAt).Seconds()),
	}, "Login successful")
}

// Logout revokes the caller's token until its natural expiry.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	tokenString := bearerToken(c)
	if tokenString == "" {
		prometheus.RecordAuthError("missing_token")
		return response.Error(c, apperr.Unauthorized("Missing authorization token"))
	}

	if err := tokens.Invalidate(tokenString); err != nil {
		log.Error("Failed to invalidate token", zap.Error(err))
		return response.Error(c, err)
	}

	prometheus.DecreaseActiveTokens()
	log.Info("User logged out")
	return response.Success(c, nil, "Successfully logged out")
}

// Refresh rotates the caller's token, revoking the old one.
func Refresh(c echo.Context) error {
	log := logger.FromContext(c)

	tokenString := bearerToken(c)
	if tokenString == "" {
		prometheus.RecordAuthError("missing_token")
		return response.Error(c, apperr.Unauthorized("Missing authorization token"))
	}

	signed, expiresAt, claims, err := tokens.Refresh(tokenString)
	if err != nil {
		log.Error("Failed to refresh token", zap.Error(err))
		prometheus.RecordAuthError("refresh_failed")
		return response.Error(c, err)
	}

	log.Info("Token refreshed", zap.Uint("user_id", claims.UserID))
	return response.Success(c, echo.Map{
		"token":      signed,
		"token_type": "bearer",
		"expires_in": int(time.Until(expiresAt).Seconds()),
	}, "Token refreshed")
}

// Me returns the caller's account with its corporate association.
func Me(c echo.Context) error {
	log := logger.FromContext(c)

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		prometheus.RecordAuthError("missing_claims")
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Preload("Corporate").First(&user, claims.UserID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.Unauthorized("Authentication required"))
		}
		log.Error("Failed to load account", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	user.SplitName()
	return response.Success(c, echo.Map{
		"user":      user,
		"corporate": user.Corporate,
	}, "User profile retrieved")
}

// authenticate checks status and password, returning the uniform rejection
// on any mismatch.
func authenticate(user *model.User, password string) error {
	if !user.IsActive() {
		return invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return invalidCredentials()
	}
	return nil
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
