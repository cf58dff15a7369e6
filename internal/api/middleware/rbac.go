package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/service"
)

// RequireRoles enforces role-based access control against the stored role of
// the resolved user. Membership is exact: no role implies another. The
// response deliberately does not reveal which roles would have been accepted.
func RequireRoles(required ...domain.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if err := service.Authorize(user, required...); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "operation not permitted")
			}
			return next(c)
		}
	}
}
