// Package middleware lets other services accept the access token cookie and
// renew it through the auth service once it expires.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/Skotchmaster/vayez/pkg/authclient"
	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/Skotchmaster/vayez/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"

	defaultRefreshTTL = 72 * time.Hour
)

type AutoRefreshMiddleware struct {
	Tokens     *tokens.Issuer
	AuthClient *authclient.Client
	RefreshTTL time.Duration
	Secure     bool
}

func NewAutoRefreshMiddleware(issuer *tokens.Issuer, authClient *authclient.Client) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		Tokens:     issuer,
		AuthClient: authClient,
		RefreshTTL: defaultRefreshTTL,
		Secure:     true,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auto_refresh")

		access, err := c.Cookie(accessCookie)
		if err != nil || access.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Tokens.ParseAccess(access.Value)
		if err == nil {
			if validator != nil {
				if vErr := validator(claims); vErr != nil {
					return vErr
				}
			}
			setUserContext(c, claims)
			return next(c)
		}

		if !errors.Is(err, jwt.ErrTokenExpired) {
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		refresh, rErr := c.Cookie(refreshCookie)
		if rErr != nil || refresh.Value == "" {
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}

		pair, err := m.AuthClient.RefreshTokens(c.Request().Context(), refresh.Value)
		if err != nil {
			l.Warn("refresh_failed", "status", 401, "error", err)
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
		}

		newClaims, err := m.Tokens.ParseAccess(pair.AccessToken)
		if err != nil {
			l.Error("refresh_failed", "status", 401, "reason", "new access token invalid", "error", err)
			m.clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}

		c.SetCookie(m.cookie(accessCookie, pair.AccessToken, "/", newClaims.ExpiresAt.Time))
		c.SetCookie(m.cookie(refreshCookie, pair.RefreshToken, "/", time.Now().Add(m.RefreshTTL)))

		if validator != nil {
			if vErr := validator(newClaims); vErr != nil {
				return vErr
			}
		}

		setUserContext(c, newClaims)
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) cookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *AutoRefreshMiddleware) clearAuthCookies(c echo.Context) {
	for _, name := range []string{accessCookie, refreshCookie} {
		ck := m.cookie(name, "", "/", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
}
