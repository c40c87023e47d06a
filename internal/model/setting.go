package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Setting value types
const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

// Setting is a per-user key/value pair. The value is stored as text together
// with its inferred type so reads can return the original JSON shape.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_settings_user_key;not null"`
	Key       string    `json:"key" gorm:"type:varchar(100);uniqueIndex:idx_settings_user_key;not null"`
	Value     string    `json:"value" gorm:"type:text"`
	Type      string    `json:"type" gorm:"type:varchar(20);default:'string'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetValue stores the value, inferring its type from the decoded JSON shape.
func (s *Setting) SetValue(value interface{}) error {
	switch v := value.(type) {
	case bool:
		s.Type = SettingTypeBoolean
		if v {
			s.Value = "1"
		} else {
			s.Value = "0"
		}
	case float64:
		s.Type = SettingTypeNumber
		s.Value = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		s.Type = SettingTypeString
		s.Value = v
	case nil:
		s.Type = SettingTypeString
		s.Value = ""
	default:
		// Arrays and objects round-trip through JSON
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		s.Type = SettingTypeJSON
		s.Value = string(encoded)
	}
	return nil
}

// DecodedValue returns the stored value in its original type.
func (s *Setting) DecodedValue() interface{} {
	switch s.Type {
	case SettingTypeBoolean:
		return s.Value == "1" || s.Value == "true"
	case SettingTypeNumber:
		if f, err := strconv.ParseFloat(s.Value, 64); err == nil {
			return f
		}
		return s.Value
	case SettingTypeJSON:
		var decoded interface{}
		if err := json.Unmarshal([]byte(s.Value), &decoded); err == nil {
			return decoded
		}
		return s.Value
	default:
		return s.Value
	}
}
