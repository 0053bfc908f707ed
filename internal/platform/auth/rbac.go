package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Staff roles.
const (
	RoleAdmin              = "admin"
	RoleSeniorReceptionist = "senior_receptionist"
	RoleJuniorReceptionist = "junior_receptionist"
	RoleSeniorLabTech      = "senior_lab_tech"
	RoleJuniorLabTech      = "junior_lab_tech"
)

// Roles lists every valid staff role.
var Roles = []string{
	RoleAdmin,
	RoleSeniorReceptionist,
	RoleJuniorReceptionist,
	RoleSeniorLabTech,
	RoleJuniorLabTech,
}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
// Admins always pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, has := range userRoles {
				if has == RoleAdmin {
					return next(c)
				}
				for _, required := range roles {
					if has == required {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequirePermission checks the permission list carried in the caller's token.
func RequirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			for _, r := range RolesFromContext(ctx) {
				if r == RoleAdmin {
					return next(c)
				}
			}
			for _, p := range PermissionsFromContext(ctx) {
				if p == perm {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required permission: %s", perm))
		}
	}
}
