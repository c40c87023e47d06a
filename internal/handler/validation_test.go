package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pms-admin-service/internal/apperr"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors_ErrIsNilWhenEmpty(t *testing.T) {
	f := fieldErrors{}
	require.NoError(t, f.err())
}

func TestFieldErrors_AccumulatesMessages(t *testing.T) {
	f := fieldErrors{}
	f.requireString("name", "")
	f.requireEmail("email", "not-an-email")
	f.requireMinLen("password", "short", 8)
	f.requireMinInt("user_allowed", 0, 1)
	f.requireOneOf("status", "paused", "active", "inactive")

	err := f.err()
	require.Error(t, err)

	appErr := apperr.From(err)
	require.Equal(t, apperr.KindValidation, appErr.Kind)
	require.Len(t, appErr.Fields, 5)
	require.Contains(t, appErr.Fields["name"][0], "required")
	require.Contains(t, appErr.Fields["email"][0], "valid email")
	require.Contains(t, appErr.Fields["password"][0], "at least 8 characters")
	require.Contains(t, appErr.Fields["user_allowed"][0], "at least 1")
	require.Contains(t, appErr.Fields["status"][0], "invalid")
}

func TestFieldErrors_RequireEmail(t *testing.T) {
	t.Run("empty reports required only", func(t *testing.T) {
		f := fieldErrors{}
		f.requireEmail("email", "")
		require.Len(t, f["email"], 1)
		require.Contains(t, f["email"][0], "required")
	})

	t.Run("valid address passes", func(t *testing.T) {
		f := fieldErrors{}
		f.requireEmail("email", "jane@acme.com")
		require.NoError(t, f.err())
	})
}

func TestFieldErrors_RequireOneOf(t *testing.T) {
	f := fieldErrors{}
	f.requireOneOf("status", "active", "active", "inactive")
	f.requireOneOf("role", "user", "admin", "user")
	require.NoError(t, f.err())
}

func TestParseDate(t *testing.T) {
	t.Run("date only", func(t *testing.T) {
		f := fieldErrors{}
		got := parseDate(f, "valid_from", "2025-01-15")
		require.NoError(t, f.err())
		require.NotNil(t, got)
		require.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("rfc3339", func(t *testing.T) {
		f := fieldErrors{}
		got := parseDate(f, "valid_to", "2025-06-30T12:00:00Z")
		require.NoError(t, f.err())
		require.NotNil(t, got)
	})

	t.Run("empty is nil without error", func(t *testing.T) {
		f := fieldErrors{}
		require.Nil(t, parseDate(f, "valid_from", ""))
		require.NoError(t, f.err())
	})

	t.Run("garbage records a field error", func(t *testing.T) {
		f := fieldErrors{}
		require.Nil(t, parseDate(f, "valid_from", "15/01/2025"))
		require.Error(t, f.err())
		require.NotEmpty(t, f["valid_from"])
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"  Acme   Corp  ", "acme-corp"},
		{"Acme & Sons, Ltd.", "acme-sons-ltd"},
		{"ACME2000", "acme2000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestBearerToken(t *testing.T) {
	newCtx := func(header string) echo.Context {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return e.NewContext(req, httptest.NewRecorder())
	}

	require.Equal(t, "abc.def.ghi", bearerToken(newCtx("Bearer abc.def.ghi")))
	require.Equal(t, "abc.def.ghi", bearerToken(newCtx("bearer abc.def.ghi")))
	require.Empty(t, bearerToken(newCtx("")))
	require.Empty(t, bearerToken(newCtx("Basic abc")))
	require.Empty(t, bearerToken(newCtx("Bearer")))
}
