package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type rejection struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Error   rejectionError `json:"error"`
}

type rejectionError struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// reject stops the chain with the API error envelope.
func reject(c echo.Context, status int, message string) error {
	return c.JSON(status, rejection{
		Status:  "error",
		Message: message,
		Error:   rejectionError{Code: ErrorCode(status), RequestID: RequestIDFromContext(c)},
	})
}

// ErrorCode turns an HTTP status into a snake_case code, e.g. 429 → "too_many_requests".
func ErrorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	text = strings.NewReplacer("-", " ", "'", "").Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(text), "_")
}
