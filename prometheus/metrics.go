package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_login_total",
			Help: "Total number of login attempts by tier",
		},
		[]string{"tier"}, // tier is "generic", "super" or "corporate"
	)

	// Organization operation counter
	OrganizationOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_organization_operations_total",
			Help: "Total number of organization operations",
		},
		[]string{"operation"}, // "create", "list", "access", "update", "delete"
	)

	// User operation counter
	UserOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_user_operations_total",
			Help: "Total number of organization user operations",
		},
		[]string{"operation"},
	)

	// Setting operation counter
	SettingOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_setting_operations_total",
			Help: "Total number of setting operations",
		},
		[]string{"operation"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // "invalid_credentials", "invalid_token", "scope_mismatch" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pms_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pms_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pms_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pms_info",
			Help: "Information about the admin service",
		},
		[]string{"version"},
	)

	// Active organizations
	ActiveOrganizationsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pms_active_organizations",
			Help: "Number of currently active organizations",
		},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(OrganizationOperationCounter)
	prometheus.MustRegister(UserOperationCounter)
	prometheus.MustRegister(SettingOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(ActiveOrganizationsGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordLogin records a login attempt by tier
func RecordLogin(tier string) {
	LoginCounter.With(prometheus.Labels{"tier": tier}).Inc()
}

// RecordOrganizationOperation records an organization operation
func RecordOrganizationOperation(operation string) {
	OrganizationOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordUserOperation records an organization user operation
func RecordUserOperation(operation string) {
	UserOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordSettingOperation records a setting operation
func RecordSettingOperation(operation string) {
	SettingOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// UpdateActiveOrganizations updates the active organizations gauge
func UpdateActiveOrganizations(count int64) {
	ActiveOrganizationsGauge.Set(float64(count))
}
