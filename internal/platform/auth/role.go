package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role values carried in the session and checked by RequireRole.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// RequireRole returns middleware that allows the request only when the
// session role is one of the given roles. ADMIN passes every gate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
