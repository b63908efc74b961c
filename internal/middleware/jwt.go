package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/leadforge/internal/auth"
)

// JWT verifies the bearer token and exposes its subject, role and tenant on
// the echo context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return reject(c, http.StatusUnauthorized, "missing authorization header")
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return reject(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return reject(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextKeyUserID, claims.Subject)
			c.Set(ContextKeyUserRole, claims.Role)
			c.Set(ContextKeyTenantID, claims.TenantID)
			return next(c)
		}
	}
}
