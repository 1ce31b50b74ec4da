package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/ports"
)

// RBAC enforces role-based access control. The role is resolved from the
// profile store on every request rather than baked into the token, so an
// admin edit to a role takes effect on the next call. An unresolvable role is
// forbidden, matching the gate's unknown-role dead end.
func RBAC(resolver ports.RoleResolver, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get("uid").(string)
			role, ok := resolver.ResolveRole(c.Request().Context(), uid)
			if !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			c.Set("role", role)
			return next(c)
		}
	}
}
