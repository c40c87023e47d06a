package handler

import (
	"fmt"
	"net/mail"

	"pms-admin-service/internal/apperr"
)

// fieldErrors accumulates field-level validation messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

// err returns a validation error when any field failed, nil otherwise.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation(f)
}

func (f fieldErrors) requireString(field, value string) {
	if value == "" {
		f.add(field, fmt.Sprintf("The %s field is required", field))
	}
}

func (f fieldErrors) requireEmail(field, value string) {
	if value == "" {
		f.add(field, fmt.Sprintf("The %s field is required", field))
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		f.add(field, fmt.Sprintf("The %s must be a valid email address", field))
	}
}

func (f fieldErrors) requireMinLen(field, value string, min int) {
	if len(value) < min {
		f.add(field, fmt.Sprintf("The %s must be at least %d characters", field, min))
	}
}

func (f fieldErrors) requireMinInt(field string, value, min int) {
	if value < min {
		f.add(field, fmt.Sprintf("The %s must be at least %d", field, min))
	}
}

func (f fieldErrors) requireOneOf(field, value string, allowed ...string) {
	for _, v := range allowed {
		if value == v {
			return
		}
	}
	f.add(field, fmt.Sprintf("The selected %s is invalid", field))
}
