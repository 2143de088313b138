package auth

import (
	"net/http"

	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/labstack/echo/v4"
)

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := accessToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := g.Tokens.ParseAccess(raw)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_rejected", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		setUserContext(c, claims)
		return next(c)
	}
}
