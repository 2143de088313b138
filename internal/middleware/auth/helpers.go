package auth

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/vayez/pkg/tokens"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	ctxUserID = "user_id"
	ctxRole   = "role"
)

type Guard struct {
	Tokens *tokens.Issuer
}

func NewGuard(issuer *tokens.Issuer) *Guard {
	return &Guard{Tokens: issuer}
}

// accessToken prefers the Authorization header over the cookie.
func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ctxUserID, claims.Subject)
	c.Set(ctxRole, claims.Role)
}

// AccountID returns the authenticated account set by RequireAuth.
func AccountID(c echo.Context) (uuid.UUID, error) {
	raw, _ := c.Get(ctxUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return id, nil
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}
