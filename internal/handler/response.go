package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/leadforge/internal/middleware"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail identifies a failure for clients and for log correlation.
type ErrorDetail struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// Success writes a "success" envelope; status 0 means 200.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{Status: "success", Message: message, Data: data})
}

// Error writes an "error" envelope carrying an error code derived from the
// status and the request id; status 0 means 500.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:  "error",
		Message: message,
		Error: &ErrorDetail{
			Code:      middlewarepkg.ErrorCode(status),
			RequestID: middlewarepkg.RequestIDFromContext(c),
		},
	})
}
