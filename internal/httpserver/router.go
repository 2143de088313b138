package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/vayez/internal/middleware/auth"
	"github.com/Skotchmaster/vayez/internal/middleware/csrf"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Guard       *auth.Guard
	// CSRF is nil when browser clients are not expected.
	CSRF *csrf.Config
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	var mws []echo.MiddlewareFunc
	if d.CSRF != nil {
		mws = append(mws, csrf.Middleware(*d.CSRF))
	}

	e.GET("/roles", d.AuthHandler.Roles, mws...)

	a := e.Group("/auth", mws...)

	a.POST("/create-user", d.AuthHandler.CreateUser, d.Guard.RequireAdmin)
	a.POST("/activate", d.AuthHandler.Activate)
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/refresh", d.AuthHandler.Refresh)
	a.POST("/change-password", d.AuthHandler.ChangePassword, d.Guard.RequireAuth)
	a.POST("/forget-password", d.AuthHandler.ForgetPassword)
	a.PUT("/reset-password", d.AuthHandler.ResetPassword)
}
