package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireTenant rejects authenticated requests whose token is not bound to a tenant.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if TenantIDFromContext(c) == "" {
				return reject(c, http.StatusForbidden, "missing tenant")
			}
			return next(c)
		}
	}
}

// TenantIDFromContext returns the tenant bound to the request, if any.
func TenantIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyTenantID).(string); ok {
		return val
	}
	return ""
}

// UserIDFromContext returns the authenticated subject, if any.
func UserIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUserID).(string); ok {
		return val
	}
	return ""
}

// RoleFromContext returns the role claimed by the token, if any.
func RoleFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUserRole).(string); ok {
		return val
	}
	return ""
}
