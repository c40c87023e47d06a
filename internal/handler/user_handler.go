package handler

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/authz"
	"pms-admin-service/internal/middleware"
	"pms-admin-service/internal/model"
	"pms-admin-service/internal/response"
	"pms-admin-service/internal/scope"
	"pms-admin-service/pkg/database"
	"pms-admin-service/pkg/logger"
	"pms-admin-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type orgUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Address   string `json:"address"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

// scopedCorporate loads the corporate named in the path, intersected with
// the request scope. A foreign corporate behaves exactly like a missing one.
func scopedCorporate(c echo.Context, sc scope.Scope) (*model.Corporate, error) {
	id, err := strconv.ParseUint(c.Param("orgId"), 10, 32)
	if err != nil {
		return nil, apperr.NotFound("Organization not found")
	}

	var corporate model.Corporate
	result := sc.Corporates(database.GetDB()).First(&corporate, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Organization not found")
		}
		return nil, apperr.Internal(result.Error)
	}
	return &corporate, nil
}

// ListOrgUsers returns all accounts under the scoped organization.
func ListOrgUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("list")

	sc, ok := middleware.ScopeFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	corporate, err := scopedCorporate(c, sc)
	if err != nil {
		return response.Error(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	result := database.GetDB().
		Where("corporate_id = ?", corporate.ID).
		Select("id", "name", "first_name", "last_name", "email", "mobile", "address", "role", "role_id", "status", "created_at").
		Order("created_at DESC").
		Find(&users)
	if result.Error != nil {
		log.Error("Failed to list organization users", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	for i := range users {
		users[i].SplitName()
	}

	return response.Success(c, echo.Map{
		"users":             users,
		"organization_name": corporate.Name,
	}, "Organization users retrieved")
}

// CreateOrgUser provisions an account under the scoped organization. The
// seat limit is enforced here: an organization at capacity rejects further
// active accounts.
func CreateOrgUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("create")

	sc, ok := middleware.ScopeFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	corporate, err := scopedCorporate(c, sc)
	if err != nil {
		return response.Error(c, err)
	}

	var req orgUserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user request", zap.Error(err))
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}

	fields := fieldErrors{}
	fields.requireString("first_name", req.FirstName)
	fields.requireString("last_name", req.LastName)
	fields.requireEmail("email", req.Email)
	fields.requireOneOf("role", req.Role, model.RoleAdmin, model.RoleUser)
	if req.Password != "" {
		fields.requireMinLen("password", req.Password, 6)
	}
	if err := fields.err(); err != nil {
		return response.Error(c, err)
	}

	password := req.Password
	if password == "" {
		password = cfg.Provision.DefaultPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	roleID := model.RoleIDFor(req.Role)
	user := model.User{
		Name:        req.FirstName + " " + req.LastName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Mobile:      req.Mobile,
		Address:     req.Address,
		Password:    string(hashed),
		Role:        req.Role,
		RoleID:      roleID,
		Status:      model.StatusActive,
		CorporateID: &corporate.ID,
		Permissions: authz.DefaultPermissions(roleID),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		var seats int64
		if err := tx.Model(&model.User{}).
			Where("corporate_id = ? AND status = ?", corporate.ID, model.StatusActive).
			Count(&seats).Error; err != nil {
			return err
		}
		if seats >= int64(corporate.UserAllowed) {
			return apperr.Validation(map[string][]string{
				"user_allowed": {"The organization has reached its seat limit"},
			})
		}

		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apperr.Conflict("Email already registered")
		}
		appErr := apperr.From(err)
		if appErr.Kind == apperr.KindInternal {
			log.Error("Failed to create user", zap.Error(err))
		}
		return response.Error(c, appErr)
	}

	log.Info("Organization user created",
		zap.Uint("id", user.ID),
		zap.Uint("corporate_id", corporate.ID),
		zap.String("role", user.Role))

	return response.Created(c, user, "User created successfully")
}

// UpdateOrgUser applies a status-only patch or a validated full update to an
// account within the scoped organization.
func UpdateOrgUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("update")

	sc, ok := middleware.ScopeFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	corporate, err := scopedCorporate(c, sc)
	if err != nil {
		return response.Error(c, err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.Error(c, apperr.NotFound("User not found"))
	}

	var user model.User
	result := database.GetDB().
		Where("corporate_id = ?", corporate.ID).
		First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("User not found"))
		}
		log.Error("Failed to load user", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	var raw map[string]json.RawMessage
	if err := c.Bind(&raw); err != nil {
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	// Status-only patch
	if rawStatus, ok := raw["status"]; ok && len(raw) == 1 {
		var status string
		if err := json.Unmarshal(rawStatus, &status); err != nil {
			return response.Error(c, apperr.Validation(map[string][]string{"status": {"The selected status is invalid"}}))
		}

		fields := fieldErrors{}
		fields.requireOneOf("status", status, model.StatusActive, model.StatusInactive)
		if err := fields.err(); err != nil {
			return response.Error(c, err)
		}

		if err := database.GetDB().Model(&user).Update("status", status).Error; err != nil {
			log.Error("Failed to update user status", zap.Error(err))
			return response.Error(c, apperr.Internal(err))
		}

		log.Info("User status updated", zap.Uint("id", user.ID), zap.String("status", status))
		return response.Success(c, user, "User status updated successfully")
	}

	var req orgUserRequest
	if err := decodeRaw(raw, &req); err != nil {
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}

	fields := fieldErrors{}
	fields.requireString("first_name", req.FirstName)
	fields.requireString("last_name", req.LastName)
	fields.requireEmail("email", req.Email)
	fields.requireOneOf("role", req.Role, model.RoleAdmin, model.RoleUser)
	if req.Password != "" {
		fields.requireMinLen("password", req.Password, 6)
	}
	if err := fields.err(); err != nil {
		return response.Error(c, err)
	}

	roleID := model.RoleIDFor(req.Role)
	updates := map[string]interface{}{
		"name":       req.FirstName + " " + req.LastName,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
		"mobile":     req.Mobile,
		"address":    req.Address,
		"role":       req.Role,
		"role_id":    roleID,
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return response.Error(c, apperr.Internal(err))
		}
		updates["password"] = string(hashed)
	}

	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Error(c, apperr.Conflict("Email already registered"))
		}
		log.Error("Failed to update user", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	log.Info("User updated", zap.Uint("id", user.ID), zap.Uint("corporate_id", corporate.ID))
	return response.Success(c, user, "User updated successfully")
}

// DeleteOrgUser soft-deletes a non-admin account within the scoped
// organization. Admin accounts can only be deactivated, never deleted.
func DeleteOrgUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("delete")

	sc, ok := middleware.ScopeFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}

	corporate, err := scopedCorporate(c, sc)
	if err != nil {
		return response.Error(c, err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.Error(c, apperr.NotFound("User not found"))
	}

	var user model.User
	result := database.GetDB().
		Where("corporate_id = ?", corporate.ID).
		First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("User not found"))
		}
		log.Error("Failed to load user", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	if user.IsAdmin() {
		return response.Error(c, apperr.Forbidden("Admin users cannot be deleted"))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(&user).Error; err != nil {
		log.Error("Failed to delete user", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	log.Info("User deleted", zap.Uint("id", user.ID), zap.Uint("corporate_id", corporate.ID))
	return response.Success(c, nil, "User deleted successfully")
}
