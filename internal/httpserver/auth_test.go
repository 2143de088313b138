package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Skotchmaster/vayez/internal/models"
	"github.com/Skotchmaster/vayez/internal/service"
	"github.com/Skotchmaster/vayez/internal/testutil"
	"github.com/Skotchmaster/vayez/internal/transport"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	body   any
	bearer string
	cookie *http.Cookie
}

func do(t *testing.T, srv *testutil.Server, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.bearer)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func login(t *testing.T, srv *testutil.Server, email, password string) transport.TokenPair {
	t.Helper()
	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/login", body: transport.LoginRequest{Email: email, Password: password}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[transport.TokenPair](t, rec)
}

func roleID(t *testing.T, srv *testutil.Server, name string) string {
	t.Helper()
	rec := do(t, srv, call{method: http.MethodGet, path: "/roles"})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, r := range decode[[]models.Role](t, rec) {
		if r.Name == name {
			return r.ID.String()
		}
	}
	t.Fatalf("role %q not found", name)
	return ""
}

func createUser(t *testing.T, srv *testutil.Server, adminToken, email string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, srv, call{
		method: http.MethodPost,
		path:   "/auth/create-user",
		bearer: adminToken,
		body: transport.CreateUserRequest{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     email,
			RoleID:    roleID(t, srv, "user"),
		},
	})
}

func activeUser(t *testing.T, srv *testutil.Server, email, password string) {
	t.Helper()
	admin := login(t, srv, "admin@example.com", testutil.AdminPassword)
	require.Equal(t, http.StatusCreated, createUser(t, srv, admin.AccessToken, email).Code)

	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/activate", body: transport.ActivateRequest{
		Token:           srv.Mail.ActivationToken(email),
		Password:        password,
		ConfirmPassword: password,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	srv := testutil.NewServer(t)
	assert.Equal(t, http.StatusOK, do(t, srv, call{method: http.MethodGet, path: "/health/live"}).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, call{method: http.MethodGet, path: "/health/ready"}).Code)
}

func TestCreateUser(t *testing.T) {
	srv := testutil.NewServer(t)
	admin := login(t, srv, "admin@example.com", testutil.AdminPassword)

	rec := createUser(t, srv, admin.AccessToken, "a@x.com")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[map[string]any](t, rec)
	user := res["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, false, user["isActive"])
	assert.NotContains(t, user, "PasswordHash")
	assert.Equal(t, srv.Mail.ActivationToken("a@x.com"), res["token"])

	rec = createUser(t, srv, admin.AccessToken, "a@x.com")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, service.MsgEmailInUse, message(t, rec))
}

func TestCreateUser_Guards(t *testing.T) {
	srv := testutil.NewServer(t)

	assert.Equal(t, http.StatusUnauthorized, createUser(t, srv, "", "a@x.com").Code)

	activeUser(t, srv, "user@x.com", "password1")
	user := login(t, srv, "user@x.com", "password1")
	assert.Equal(t, http.StatusForbidden, createUser(t, srv, user.AccessToken, "b@x.com").Code)
}

func TestCreateUser_Validation(t *testing.T) {
	srv := testutil.NewServer(t)
	admin := login(t, srv, "admin@example.com", testutil.AdminPassword)

	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/create-user", bearer: admin.AccessToken, body: transport.CreateUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "not-an-email",
		RoleID:    roleID(t, srv, "user"),
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/create-user", bearer: admin.AccessToken, body: transport.CreateUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
		RoleID:    "00000000-0000-0000-0000-000000000000",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgUnknownRole, message(t, rec))
}

func TestActivate(t *testing.T) {
	srv := testutil.NewServer(t)
	admin := login(t, srv, "admin@example.com", testutil.AdminPassword)
	require.Equal(t, http.StatusCreated, createUser(t, srv, admin.AccessToken, "a@x.com").Code)
	token := srv.Mail.ActivationToken("a@x.com")

	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/activate", body: transport.ActivateRequest{
		Token: token, Password: "password1", ConfirmPassword: "password2",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/activate", body: transport.ActivateRequest{
		Token: token, Password: "password1", ConfirmPassword: "password1",
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["isActive"])

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/activate", body: transport.ActivateRequest{
		Token: token, Password: "password3", ConfirmPassword: "password3",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	srv := testutil.NewServer(t)
	activeUser(t, srv, "a@x.com", "password1")

	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/login", body: transport.LoginRequest{Email: "a@x.com", Password: "password1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decode[transport.TokenPair](t, rec)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, pair.UserID)

	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.HttpOnly
	}
	assert.Equal(t, map[string]bool{"accessToken": true, "refreshToken": true}, names)

	wrongPassword := do(t, srv, call{method: http.MethodPost, path: "/auth/login", body: transport.LoginRequest{Email: "a@x.com", Password: "password2"}})
	wrongEmail := do(t, srv, call{method: http.MethodPost, path: "/auth/login", body: transport.LoginRequest{Email: "b@x.com", Password: "password1"}})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongEmail.Code)
	assert.Equal(t, message(t, wrongPassword), message(t, wrongEmail))
	assert.Equal(t, service.MsgInvalidCredentials, message(t, wrongEmail))
}

func TestRefresh(t *testing.T) {
	srv := testutil.NewServer(t)
	activeUser(t, srv, "a@x.com", "password1")
	first := login(t, srv, "a@x.com", "password1")

	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/refresh", body: transport.RefreshRequest{RefreshToken: first.RefreshToken}})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[transport.TokenPair](t, rec)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/refresh", body: transport.RefreshRequest{RefreshToken: first.RefreshToken}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/refresh", cookie: &http.Cookie{Name: "refreshToken", Value: second.RefreshToken}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePassword(t *testing.T) {
	srv := testutil.NewServer(t)
	activeUser(t, srv, "a@x.com", "password1")
	pair := login(t, srv, "a@x.com", "password1")

	body := transport.ChangePasswordRequest{OldPassword: "password1", NewPassword: "password2"}

	rec := do(t, srv, call{method: http.MethodPost, path: "/auth/change-password", body: body})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/change-password", bearer: pair.AccessToken, body: transport.ChangePasswordRequest{
		OldPassword: "wrongpass1", NewPassword: "password2",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/change-password", bearer: pair.AccessToken, body: body})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	login(t, srv, "a@x.com", "password2")
	rec = do(t, srv, call{method: http.MethodPost, path: "/auth/login", body: transport.LoginRequest{Email: "a@x.com", Password: "password1"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgetAndResetPassword(t *testing.T) {
	srv := testutil.NewServer(t)
	activeUser(t, srv, "a@x.com", "password1")

	unknown := do(t, srv, call{method: http.MethodPost, path: "/auth/forget-password", body: transport.ForgetPasswordRequest{Email: "nobody@x.com"}})
	known := do(t, srv, call{method: http.MethodPost, path: "/auth/forget-password", body: transport.ForgetPasswordRequest{Email: "a@x.com"}})
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, unknown.Body.String(), known.Body.String())
	assert.Equal(t, service.MsgForgotPassword, message(t, known))
	assert.Empty(t, srv.Mail.ResetToken("nobody@x.com"))

	token := srv.Mail.ResetToken("a@x.com")
	require.NotEmpty(t, token)

	reset := transport.ResetPasswordRequest{ResetToken: token, NewPassword: "password9"}
	rec := do(t, srv, call{method: http.MethodPut, path: "/auth/reset-password", body: reset})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, call{method: http.MethodPut, path: "/auth/reset-password", body: reset})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, srv, "a@x.com", "password9")
}

func TestRoles(t *testing.T) {
	srv := testutil.NewServer(t)

	rec := do(t, srv, call{method: http.MethodGet, path: "/roles"})
	require.Equal(t, http.StatusOK, rec.Code)

	roles := decode[[]models.Role](t, rec)
	require.Len(t, roles, len(testutil.DefaultRoles))
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "user", roles[1].Name)
}
