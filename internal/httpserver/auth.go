package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/vayez/internal/middleware/auth"
	"github.com/Skotchmaster/vayez/internal/service"
	"github.com/Skotchmaster/vayez/internal/transport"
	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return c.Validate(req)
}

func (h *AuthHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_create_user")

	var req transport.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_user_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.CreateAccount(ctx, service.CreateAccountInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.CreateUserResponse{
		User:  res.Account,
		Token: res.Token,
	})
}

func (h *AuthHTTP) Activate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_activate")

	var req transport.ActivateRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("activate_error", "status", 400, "error", err)
		return err
	}

	account, err := h.Svc.ActivateAccount(ctx, req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, account)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	h.setTokenCookies(c, res)
	l.Info("login_successful", "account_id", res.AccountID)

	return c.JSON(http.StatusOK, tokenPair(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(auth.RefreshCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	h.setTokenCookies(c, res)
	return c.JSON(http.StatusOK, tokenPair(res))
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	var req transport.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return err
	}

	if err := h.Svc.ChangePassword(ctx, accountID, req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "password changed"})
}

func (h *AuthHTTP) ForgetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forget_password")

	var req transport.ForgetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("forget_password_error", "status", 400, "error", err)
		return err
	}

	msg := h.Svc.ForgotPassword(ctx, req.Email)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: msg})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req transport.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("reset_password_error", "status", 400, "error", err)
		return err
	}

	if err := h.Svc.ResetPassword(ctx, req.ResetToken, req.NewPassword); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "password has been reset"})
}

func (h *AuthHTTP) Roles(c echo.Context) error {
	roles, err := h.Svc.ListRoles(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func tokenPair(res *service.LoginResult) transport.TokenPair {
	return transport.TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		UserID:       res.AccountID.String(),
	}
}
