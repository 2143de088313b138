package httpserver

import (
	"net/http"
	"time"

	"github.com/Skotchmaster/vayez/internal/middleware/auth"
	"github.com/Skotchmaster/vayez/internal/service"
	"github.com/labstack/echo/v4"
)

func createCookie(name, value, path string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) setTokenCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(createCookie(auth.AccessCookie, res.AccessToken, "/", res.AccessExp, h.CookieSecure))
	c.SetCookie(createCookie(auth.RefreshCookie, res.RefreshToken, "/", res.RefreshExp, h.CookieSecure))
}
