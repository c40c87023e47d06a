package model_test

import (
	"sync"
	"testing"

	"pms-admin-service/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func parseCorporateSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(&model.Corporate{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s
}

// users_count is filled by a subquery alias, never by a real column. It must
// stay scannable but excluded from migration and from INSERT/UPDATE column
// lists, otherwise Create references a column that does not exist.
func TestCorporate_UsersCountIsReadOnly(t *testing.T) {
	s := parseCorporateSchema(t)

	field := s.LookUpField("UsersCount")
	require.NotNil(t, field)
	require.True(t, field.IgnoreMigration)
	require.True(t, field.Readable)
	require.False(t, field.Creatable)
	require.False(t, field.Updatable)
}

// An unset Settings value must fall back to the column default instead of
// writing an empty string, which jsonb input rejects.
func TestCorporate_SettingsDefaultsToEmptyObject(t *testing.T) {
	s := parseCorporateSchema(t)

	field := s.LookUpField("Settings")
	require.NotNil(t, field)
	require.True(t, field.HasDefaultValue)
	require.Equal(t, "'{}'", field.DefaultValue)
}

func TestCorporate_IsOperational(t *testing.T) {
	require.True(t, (&model.Corporate{Status: model.StatusActive}).IsOperational())
	require.False(t, (&model.Corporate{Status: model.StatusInactive}).IsOperational())
	require.False(t, (&model.Corporate{}).IsOperational())
}
