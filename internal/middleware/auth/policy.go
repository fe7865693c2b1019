package auth

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/models"
)

type Capability int

const (
	// Self allows only the resource owner.
	Self Capability = iota
	// Admin allows only admin accounts.
	Admin
	// SelfOrAdmin allows the owner or an admin.
	SelfOrAdmin
)

// Allow is the single authorization decision point; every route check goes
// through it instead of repeating role and ownership conditionals.
func Allow(caller *models.User, ownerID uint, capability Capability) bool {
	if caller == nil {
		return false
	}
	switch capability {
	case Self:
		return caller.ID == ownerID
	case Admin:
		return caller.IsAdmin
	case SelfOrAdmin:
		return caller.ID == ownerID || caller.IsAdmin
	}
	return false
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !Allow(CallerFrom(c), 0, Admin) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You are not admin !"})
		}
		return next(c)
	}
}

// RequireSelfOrAdmin authorizes against the user id carried in the named
// path parameter.
func (m *Middleware) RequireSelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
			}
			if !Allow(CallerFrom(c), uint(ownerID), SelfOrAdmin) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "You are not authorized to do this !"})
			}
			return next(c)
		}
	}
}
