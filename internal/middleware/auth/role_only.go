package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sevenx/marketplace/internal/models"
)

func (t *TokenService) requireRole(next echo.HandlerFunc, roles ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, role, err := t.CheckCookie(c)
		if err != nil {
			return err
		}

		allowed := false
		for _, r := range roles {
			if role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
		}

		if newRefresh != "" {
			c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(15*time.Minute)))
			c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(7*24*time.Hour)))
		}

		return next(c)
	}
}

func (t *TokenService) AutoRefreshMiddlewareAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return t.requireRole(next, models.RoleAdmin)
}

func (t *TokenService) AutoRefreshMiddlewareSeller(next echo.HandlerFunc) echo.HandlerFunc {
	return t.requireRole(next, models.RoleSeller, models.RoleAdmin)
}
