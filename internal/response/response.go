package response

import (
	"net/http"

	"pms-admin-service/internal/apperr"

	"github.com/labstack/echo/v4"
)

// Pagination is the pagination block of list responses.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// Envelope is the standard response body for every endpoint.
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       interface{}         `json:"data,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
}

// Success writes a 200 envelope.
func Success(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Paginated writes a 200 envelope with pagination metadata.
func Paginated(c echo.Context, data interface{}, p Pagination, message string) error {
	return c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &p,
	})
}

// Error writes the envelope for an application error.
func Error(c echo.Context, err error) error {
	appErr := apperr.From(err)
	return c.JSON(appErr.Status(), Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

// NewPagination computes last_page from the row count.
func NewPagination(page, perPage int, total int64) Pagination {
	lastPage := int(total) / perPage
	if int(total)%perPage != 0 || lastPage == 0 {
		lastPage++
	}
	return Pagination{CurrentPage: page, LastPage: lastPage, PerPage: perPage, Total: total}
}
