package auth

import (
	"github.com/labstack/echo/v4"
)

// OptionalAuthMiddleware sets the user context when valid credentials are
// present and lets anonymous requests through untouched.
func (t *TokenService) OptionalAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, _, _, err := t.CheckCookie(c); err != nil {
			c.Set("userID", nil)
			c.Set("role", nil)
		}
		return next(c)
	}
}
