package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/identitylab/account-service/internal/api/metrics"
	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

// userContextKey is where the resolved user record is stored on the request
// context for downstream handlers.
const userContextKey = "current_user"

// Authenticate extracts the bearer token, resolves it to the stored user
// record, and injects the record into the request context. The token string
// itself is never logged or echoed back.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokenRejectionsTotal.WithLabelValues("bad_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := auth.ResolveIdentity(c.Request().Context(), parts[1])
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrAccountLocked):
					metrics.TokenRejectionsTotal.WithLabelValues("account_locked").Inc()
					return echo.NewHTTPError(http.StatusForbidden, "account locked")
				case errors.Is(err, domain.ErrInvalidToken):
					metrics.TokenRejectionsTotal.WithLabelValues("invalid_token").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				default:
					// Store failure, not an authentication verdict.
					return err
				}
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user record injected by Authenticate, or nil when
// the middleware did not run.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}
