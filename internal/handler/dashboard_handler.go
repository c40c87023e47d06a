package handler

import (
	"errors"
	"fmt"
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
)

type activity struct {
	Time string `json:"time"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type quickAction struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

type roleCount struct {
	RoleID int   `json:"role_id"`
	Count  int64 `json:"count"`
}

// SuperDashboard aggregates platform-wide statistics for super admins.
func SuperDashboard(c echo.Context) error {
	log := logger.FromContext(c)

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var (
		totalOrganizations  int64
		activeOrganizations int64
		totalUsers          int64
		activeUsers         int64
		totalRevenue        float64
		monthlyRevenue      float64
	)

	aggregates := []error{
		db.Model(&model.Corporate{}).Count(&totalOrganizations).Error,
		db.Model(&model.Corporate{}).Where("status = ?", model.StatusActive).Count(&activeOrganizations).Error,
		db.Model(&model.User{}).Count(&totalUsers).Error,
		db.Model(&model.User{}).Where("status = ?", model.StatusActive).Count(&activeUsers).Error,
		db.Model(&model.Corporate{}).
			Select("COALESCE(SUM(last_payment_amount), 0)").
			Scan(&totalRevenue).Error,
		db.Model(&model.Corporate{}).
			Select("COALESCE(SUM(last_payment_amount), 0)").
			Where("date_trunc('month', last_payment_date) = date_trunc('month', CURRENT_DATE)").
			Scan(&monthlyRevenue).Error,
	}
	for _, err := range aggregates {
		if err != nil {
			log.Error("Failed to aggregate dashboard stats", zap.Error(err))
			return response.Error(c, apperr.Internal(err))
		}
	}

	prometheus.UpdateActiveOrganizations(activeOrganizations)

	stats := echo.Map{
		"total_organizations":  totalOrganizations,
		"active_organizations": activeOrganizations,
		"total_users":          totalUsers,
		"active_users":         activeUsers,
		"total_revenue":        totalRevenue,
		"monthly_revenue":      monthlyRevenue,
		"recent_activities":    recentPlatformActivities(db),
		"quick_actions": []quickAction{
			{Label: "Add Organization", Path: "/organizations/new", Icon: "building"},
			{Label: "Manage Organizations", Path: "/organizations", Icon: "list"},
			{Label: "Platform Settings", Path: "/settings", Icon: "gear"},
		},
	}

	return response.Success(c, stats, "Dashboard data retrieved")
}

// CorporateDashboard aggregates statistics for the caller's organization.
func CorporateDashboard(c echo.Context) error {
	log := logger.FromContext(c)

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("Authentication required"))
	}
	if claims.CorporateID == nil {
		return response.Error(c, apperr.Forbidden("Account is not associated with any organization"))
	}
	corporateID := *claims.CorporateID

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var corporate model.Corporate
	if err := db.First(&corporate, corporateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("Organization not found"))
		}
		log.Error("Failed to load organization", zap.Error(err))
		return response.Error(c, apperr.Internal(err))
	}

	var teamMembers, activeMembers int64
	var roles []roleCount
	aggregates := []error{
		db.Model(&model.User{}).Where("corporate_id = ?", corporateID).Count(&teamMembers).Error,
		db.Model(&model.User{}).
			Where("corporate_id = ? AND status = ?", corporateID, model.StatusActive).
			Count(&activeMembers).Error,
		db.Model(&model.User{}).
			Select("role_id, COUNT(*) as count").
			Where("corporate_id = ?", corporateID).
			Group("role_id").
			Scan(&roles).Error,
	}
	for _, err := range aggregates {
		if err != nil {
			log.Error("Failed to aggregate corporate dashboard stats", zap.Error(err))
			return response.Error(c, apperr.Internal(err))
		}
	}

	stats := echo.Map{
		"team_members":      teamMembers,
		"active_members":    activeMembers,
		"organization_info": corporate,
		"user_roles":        roles,
		"recent_activities": recentCorporateActivities(db, corporateID),
	}

	return response.Success(c, stats, "Corporate dashboard data retrieved")
}

// recentPlatformActivities lists the latest organizations and accounts.
func recentPlatformActivities(db *gorm.DB) []activity {
	activities := []activity{}

	var corporates []model.Corporate
	db.Order("created_at DESC").Limit(5).Find(&corporates)
	for _, corp := range corporates {
		activities = append(activities, activity{
			Time: humanizeSince(corp.CreatedAt),
			Text: fmt.Sprintf("Organization '%s' registered", corp.Name),
			Type: "organization_created",
		})
	}

	var users []model.User
	db.Order("created_at DESC").Limit(5).Find(&users)
	for _, user := range users {
		activities = append(activities, activity{
			Time: humanizeSince(user.CreatedAt),
			Text: fmt.Sprintf("User '%s' joined", user.Name),
			Type: "user_joined",
		})
	}

	if len(activities) > 10 {
		activities = activities[:10]
	}
	return activities
}

// recentCorporateActivities lists the latest accounts within an organization.
func recentCorporateActivities(db *gorm.DB, corporateID uint) []activity {
	activities := []activity{}

	var users []model.User
	db.Where("corporate_id = ?", corporateID).
		Order("created_at DESC").
		Limit(5).
		Find(&users)
	for _, user := range users {
		user.SplitName()
		activities = append(activities, activity{
			Time: humanizeSince(user.CreatedAt),
			Text: fmt.Sprintf("User '%s %s' joined", user.FirstName, user.LastName),
			Type: "user_joined",
		})
	}

	return activities
}

// humanizeSince renders a coarse "time ago" label.
func humanizeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
