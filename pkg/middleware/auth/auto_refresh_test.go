package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/vayez/internal/testutil"
	"github.com/Skotchmaster/vayez/pkg/authclient"
	"github.com/Skotchmaster/vayez/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	mw     *AutoRefreshMiddleware
	client *authclient.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := testutil.NewServer(t)
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)

	client := authclient.NewClient(ts.URL)
	issuer := &tokens.Issuer{Secret: []byte("test-secret"), AccessTTL: time.Hour}
	return &env{mw: NewAutoRefreshMiddleware(issuer, client), client: client}
}

func run(h echo.HandlerFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c, h(c)
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func cookieNames(rec *httptest.ResponseRecorder) map[string]string {
	out := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		out[ck.Name] = ck.Value
	}
	return out
}

func TestAutoRefresh_ValidToken(t *testing.T) {
	en := newEnv(t)
	pair, err := en.client.Login(context.Background(), "admin@example.com", testutil.AdminPassword)
	require.NoError(t, err)

	rec, c, err := run(en.mw.RequireAdmin(ok), &http.Cookie{Name: accessCookie, Value: pair.AccessToken})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pair.UserID, c.Get("user_id"))
	assert.Empty(t, cookieNames(rec))
}

func TestAutoRefresh_ExpiredTokenIsRenewed(t *testing.T) {
	en := newEnv(t)
	pair, err := en.client.Login(context.Background(), "admin@example.com", testutil.AdminPassword)
	require.NoError(t, err)

	past := &tokens.Issuer{
		Secret:    []byte("test-secret"),
		AccessTTL: time.Hour,
		Now:       func() time.Time { return time.Now().Add(-2 * time.Hour) },
	}
	expired, _, err := past.SignAccess(pair.UserID, "admin")
	require.NoError(t, err)

	rec, c, err := run(en.mw.RequireAuth(ok),
		&http.Cookie{Name: accessCookie, Value: expired},
		&http.Cookie{Name: refreshCookie, Value: pair.RefreshToken},
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", c.Get("role"))

	set := cookieNames(rec)
	assert.NotEmpty(t, set[accessCookie])
	assert.NotEqual(t, pair.RefreshToken, set[refreshCookie])
}

func TestAutoRefresh_Rejections(t *testing.T) {
	en := newEnv(t)

	_, _, err := run(en.mw.RequireAuth(ok))
	assert.Error(t, err)

	rec, _, err := run(en.mw.RequireAuth(ok), &http.Cookie{Name: accessCookie, Value: "garbage"})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
	assert.Contains(t, cookieNames(rec), accessCookie)

	past := &tokens.Issuer{
		Secret:    []byte("test-secret"),
		AccessTTL: time.Hour,
		Now:       func() time.Time { return time.Now().Add(-2 * time.Hour) },
	}
	expired, _, err := past.SignAccess("someone", "user")
	require.NoError(t, err)

	_, _, err = run(en.mw.RequireAuth(ok),
		&http.Cookie{Name: accessCookie, Value: expired},
		&http.Cookie{Name: refreshCookie, Value: "unknown"},
	)
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
