package model_test

import (
	"encoding/json"
	"testing"

	"pms-admin-service/internal/model"

	"github.com/stretchr/testify/require"
)

// decodeJSON mimics how values arrive from a bound request body.
func decodeJSON(t *testing.T, raw string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestSetting_TypeInference(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
	}{
		{"string", `"dark"`, model.SettingTypeString},
		{"number", `42.5`, model.SettingTypeNumber},
		{"integer number", `10`, model.SettingTypeNumber},
		{"boolean", `true`, model.SettingTypeBoolean},
		{"object", `{"a":1}`, model.SettingTypeJSON},
		{"array", `[1,2,3]`, model.SettingTypeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.Setting{}
			require.NoError(t, s.SetValue(decodeJSON(t, tt.raw)))
			require.Equal(t, tt.wantType, s.Type)
		})
	}
}

func TestSetting_RoundTrip(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		s := model.Setting{}
		require.NoError(t, s.SetValue("dark"))
		require.Equal(t, "dark", s.DecodedValue())
	})

	t.Run("boolean", func(t *testing.T) {
		s := model.Setting{}
		require.NoError(t, s.SetValue(true))
		require.Equal(t, true, s.DecodedValue())

		require.NoError(t, s.SetValue(false))
		require.Equal(t, false, s.DecodedValue())
	})

	t.Run("number", func(t *testing.T) {
		s := model.Setting{}
		require.NoError(t, s.SetValue(float64(42.5)))
		require.Equal(t, 42.5, s.DecodedValue())
	})

	t.Run("json object", func(t *testing.T) {
		s := model.Setting{}
		require.NoError(t, s.SetValue(decodeJSON(t, `{"layout":"wide","columns":3}`)))
		decoded, ok := s.DecodedValue().(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "wide", decoded["layout"])
		require.Equal(t, float64(3), decoded["columns"])
	})

	t.Run("nil stores empty string", func(t *testing.T) {
		s := model.Setting{}
		require.NoError(t, s.SetValue(nil))
		require.Equal(t, model.SettingTypeString, s.Type)
		require.Equal(t, "", s.DecodedValue())
	})
}
