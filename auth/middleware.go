package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware for downstream handlers.
const (
	HandleContextKey = "handle"
	RolesContextKey  = "roles"
)

// RequireAuth validates the Bearer token and injects the caller's handle
// into the echo context. Every chat endpoint sits behind it; the core
// never sees an unauthenticated identity.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header required")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			claims, err := ValidateToken(tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(HandleContextKey, claims.Handle)
			c.Set(RolesContextKey, claims.Roles)
			return next(c)
		}
	}
}

// CallerHandle extracts the authenticated handle set by RequireAuth.
func CallerHandle(c echo.Context) string {
	handle, _ := c.Get(HandleContextKey).(string)
	return handle
}
