package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/response"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, fn(c))

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestSuccess(t *testing.T) {
	rec, env := record(t, func(c echo.Context) error {
		return response.Success(c, map[string]string{"name": "Acme"}, "Organization retrieved successfully")
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	require.Equal(t, "Organization retrieved successfully", env.Message)
	require.NotNil(t, env.Data)
	require.Nil(t, env.Errors)
	require.Nil(t, env.Pagination)
}

func TestCreated(t *testing.T) {
	rec, env := record(t, func(c echo.Context) error {
		return response.Created(c, map[string]string{"name": "Acme"}, "Organization created successfully")
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)
}

func TestPaginated(t *testing.T) {
	rec, env := record(t, func(c echo.Context) error {
		return response.Paginated(c, []string{"a", "b"}, response.NewPagination(2, 10, 25), "Organizations retrieved successfully")
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Pagination)
	require.Equal(t, 2, env.Pagination.CurrentPage)
	require.Equal(t, 3, env.Pagination.LastPage)
	require.Equal(t, 10, env.Pagination.PerPage)
	require.Equal(t, int64(25), env.Pagination.Total)
}

func TestError(t *testing.T) {
	t.Run("app error maps to its status", func(t *testing.T) {
		rec, env := record(t, func(c echo.Context) error {
			return response.Error(c, apperr.NotFound("No organization exists"))
		})

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.False(t, env.Success)
		require.Equal(t, "No organization exists", env.Message)
	})

	t.Run("validation error carries fields", func(t *testing.T) {
		rec, env := record(t, func(c echo.Context) error {
			return response.Error(c, apperr.Validation(map[string][]string{
				"email": {"The email field is required."},
			}))
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, []string{"The email field is required."}, env.Errors["email"])
	})

	t.Run("unknown errors are hidden", func(t *testing.T) {
		rec, env := record(t, func(c echo.Context) error {
			return response.Error(c, echo.ErrTooManyRequests)
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "Internal server error", env.Message)
	})
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		perPage  int
		total    int64
		lastPage int
	}{
		{"exact pages", 10, 30, 3},
		{"partial last page", 10, 31, 4},
		{"empty result has one page", 10, 0, 1},
		{"single row", 10, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := response.NewPagination(1, tt.perPage, tt.total)
			require.Equal(t, tt.lastPage, p.LastPage)
		})
	}
}
