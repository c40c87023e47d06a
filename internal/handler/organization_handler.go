package handler

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/authz"
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

const usersCountSubquery = "corporates.*, (SELECT COUNT(*) FROM users WHERE users.corporate_id = corporates.id AND users.deleted_at IS NULL) AS users_count"

type organizationRequest struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Address           string  `json:"address"`
	OrganizationCode  string  `json:"organization_code"`
	UserAllowed       int     `json:"user_allowed"`
	ValidFrom         string  `json:"valid_from"`
	ValidTo           string  `json:"valid_to"`
	Status            string  `json:"status"`
	LastPaymentDate   string  `json:"last_payment_date"`
	LastPaymentAmount float64 `json:"last_payment_amount"`
}

func (r *organizationRequest) validate(fields fieldErrors) (validFrom, validTo, lastPayment *time.Time) {
	fields.requireString("name", r.Name)
	fields.requireEmail("email", r.Email)
	fields.requireString("organization_code", r.OrganizationCode)
	fields.requireMinInt("user_allowed", r.UserAllowed, 1)
	if r.Status != "" {
		fields.requireOneOf("status", r.Status, model.StatusActive, model.StatusInactive)
	}
	if r.LastPaymentAmount < 0 {
		fields.add("last_payment_amount", "The last_payment_amount must be at least 0")
	}

	validFrom = parseDate(fields, "valid_from", r.ValidFrom)
	validTo = parseDate(fields, "valid_to", r.ValidTo)
	lastPayment = parseDate(fields, "last_payment_date", r.LastPaymentDate)

	if validFrom != nil && validTo != nil && !validTo.After(*validFrom) {
		fields.add("valid_to", "The valid_to must be a date after valid_from")
	}
	return validFrom, validTo, lastPayment
}

// parseDate accepts date-only or RFC3339 values, recording a field error on
// anything else.
func parseDate(fields fieldErrors, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	fields.add(field, "The "+field+" is not a valid date")
	return nil
}

// ListOrganizations returns a paginated organization list, optionally
// filtered by a name/email search term.
func ListOrganizations(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrganizationOperation("list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 10
	}
	search := c.QueryParam("search")

	query := database.GetDB().Model(&model.Corporate{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count organizations", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	var organizations []model.Corporate
	err := query.Select(usersCountSubquery).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&organizations).Error
	if err != nil {
		log.Error("Failed to list organizations", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	return response.Paginated(c, organizations,
		response.NewPagination(page, perPage, total),
		"Organizations retrieved successfully")
}

// CreateOrganization provisions a new organization together with its default
// admin account. Both rows are written in one transaction so a corporate can
// never exist without an admin.
func CreateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrganizationOperation("create")

	var req organizationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization request", zap.Error(err))
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}

	fields := fieldErrors{}
	validFrom, validTo, lastPayment := req.validate(fields)
	if err := fields.err(); err != nil {
		return response.Error(c, err)
	}

	organization := model.Corporate{
		Name:              req.Name,
		Slug:              slugify(req.Name),
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		OrganizationCode:  req.OrganizationCode,
		UserAllowed:       req.UserAllowed,
		ValidFrom:         validFrom,
		ValidTo:           validTo,
		Status:            model.StatusActive,
		LastPaymentDate:   lastPayment,
		LastPaymentAmount: req.LastPaymentAmount,
		IsActive:          true,
	}

	defaultPassword := cfg.Provision.DefaultPassword
	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash default password", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	var admin model.User

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		// Uniqueness among live rows only; soft-deleted organizations do
		// not block code or email reuse
		var count int64
		if err := tx.Model(&model.Corporate{}).
			Where("organization_code = ? OR email = ?", req.OrganizationCode, req.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("Organization code or email already in use")
		}

		if err := tx.Create(&organization).Error; err != nil {
			return err
		}

		admin = model.User{
			Name:        "Admin User",
			FirstName:   "Admin",
			LastName:    "User",
			Email:       req.Email,
			Password:    string(hashed),
			Role:        model.RoleAdmin,
			RoleID:      model.RoleAdminID,
			Status:      model.StatusActive,
			CorporateID: &organization.ID,
			Permissions: authz.DefaultPermissions(model.RoleAdminID),
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apperr.Conflict("Organization code or email already in use")
		}
		appErr := apperr.From(err)
		if appErr.Kind == apperr.KindInternal {
			log.Error("Failed to create organization", zap.Error(err))
		}
		return response.Error(c, appErr)
	}

	log.Info("Organization created",
		zap.Uint("id", organization.ID),
		zap.String("organization_code", organization.OrganizationCode),
		zap.Uint("admin_id", admin.ID))

	return response.Created(c, echo.Map{
		"organization":   organization,
		"admin":          admin,
		"admin_password": defaultPassword,
	}, "Organization created successfully")
}

// GetOrganization returns a single organization with its user count.
func GetOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrganizationOperation("access")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.Error(c, apperr.NotFound("Organization not found"))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var organization model.Corporate
	result := database.GetDB().Model(&model.Corporate{}).
		Select(usersCountSubquery).
		First(&organization, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("Organization not found"))
		}
		log.Error("Failed to load organization", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	return response.Success(c, organization, "Organization retrieved successfully")
}

// UpdateOrganization applies either a status-only toggle or a validated full
// update. Toggling status twice returns the organization to its original
// observable state.
func UpdateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrganizationOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.Error(c, apperr.NotFound("Organization not found"))
	}

	var organization model.Corporate
	result := database.GetDB().First(&organization, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("Organization not found"))
		}
		log.Error("Failed to load organization", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	// Bind once into a map; the body is consumed by the first read
	var raw map[string]json.RawMessage
	if err := c.Bind(&raw); err != nil {
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	// Status-only toggle
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

		if err := database.GetDB().Model(&organization).Update("status", status).Error; err != nil {
			log.Error("Failed to update organization status", zap.Error(err))
			return response.Error(c, apperr.Internal(err))
		}

		log.Info("Organization status updated", zap.Uint("id", organization.ID), zap.String("status", status))
		return response.Success(c, organization, "Organization status updated successfully")
	}

	var req organizationRequest
	if err := decodeRaw(raw, &req); err != nil {
		return response.Error(c, apperr.Validation(map[string][]string{"body": {"Invalid request body"}}))
	}

	fields := fieldErrors{}
	validFrom, validTo, lastPayment := req.validate(fields)
	if err := fields.err(); err != nil {
		return response.Error(c, err)
	}

	status := organization.Status
	if req.Status != "" {
		status = req.Status
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		// Uniqueness among live rows, excluding this organization
		var count int64
		if err := tx.Model(&model.Corporate{}).
			Where("(organization_code = ? OR email = ?) AND id <> ?", req.OrganizationCode, req.Email, organization.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("Organization code or email already in use")
		}

		return tx.Model(&organization).Updates(map[string]interface{}{
			"name":                req.Name,
			"slug":                slugify(req.Name),
			"email":               req.Email,
			"phone":               req.Phone,
			"address":             req.Address,
			"organization_code":   req.OrganizationCode,
			"user_allowed":        req.UserAllowed,
			"valid_from":          validFrom,
			"valid_to":            validTo,
			"status":              status,
			"last_payment_date":   lastPayment,
			"last_payment_amount": req.LastPaymentAmount,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apperr.Conflict("Organization code or email already in use")
		}
		appErr := apperr.From(err)
		if appErr.Kind == apperr.KindInternal {
			log.Error("Failed to update organization", zap.Error(err))
		}
		return response.Error(c, appErr)
	}

	log.Info("Organization updated", zap.Uint("id", organization.ID))
	return response.Success(c, organization, "Organization updated successfully")
}

// DeleteOrganization soft-deletes an organization; the row stays recoverable
// and its code becomes reusable.
func DeleteOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrganizationOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.Error(c, apperr.NotFound("Organization not found"))
	}

	var organization model.Corporate
	result := database.GetDB().First(&organization, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("Organization not found"))
		}
		log.Error("Failed to load organization", zap.Error(result.Error))
		return response.Error(c, apperr.Internal(result.Error))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(&organization).Error; err != nil {
		log.Error("Failed to delete organization", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	log.Info("Organization deleted", zap.Uint("id", organization.ID))
	return response.Success(c, nil, "Organization deleted successfully")
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// decodeRaw re-decodes an already-bound raw body into a typed request.
func decodeRaw(raw map[string]json.RawMessage, out interface{}) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}
