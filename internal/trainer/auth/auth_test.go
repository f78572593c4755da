package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ehsaniara/annotrain/pkg/config"
	"github.com/ehsaniara/annotrain/pkg/errors"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestAuthorizer(t *testing.T, enabled bool) *Authorizer {
	t.Helper()
	a, err := NewAuthorizer(config.AuthConfig{
		Enabled: enabled,
		Realm:   "annotrain",
		Users: []config.UserConfig{
			{Username: "root", PasswordHash: hash(t, "toor"), Admin: true},
			{Username: "alice", PasswordHash: hash(t, "secret")},
			{Username: "bob", PasswordHash: hash(t, "hunter2")},
		},
		Grants: []config.GrantConfig{
			{Username: "bob", Owner: "alice", Task: "cats"},
			{Username: "bob", Owner: "carol", Task: "*"},
		},
	})
	require.NoError(t, err)
	return a
}

func TestNewAuthorizer_RejectsBadHash(t *testing.T) {
	_, err := NewAuthorizer(config.AuthConfig{
		Enabled: true,
		Users:   []config.UserConfig{{Username: "alice", PasswordHash: "plaintext"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestNewAuthorizer_UnknownUserHashCost(t *testing.T) {
	a := newTestAuthorizer(t, true)
	cost, err := bcrypt.Cost(a.dummy)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost, "matches the configured hashes")

	strong, err := bcrypt.GenerateFromPassword([]byte("toor"), bcrypt.MinCost+2)
	require.NoError(t, err)
	a, err = NewAuthorizer(config.AuthConfig{
		Enabled: true,
		Users: []config.UserConfig{
			{Username: "root", PasswordHash: string(strong), Admin: true},
			{Username: "alice", PasswordHash: hash(t, "secret")},
		},
	})
	require.NoError(t, err)
	cost, err = bcrypt.Cost(a.dummy)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+2, cost)

	a, err = NewAuthorizer(config.AuthConfig{Enabled: true})
	require.NoError(t, err)
	cost, err = bcrypt.Cost(a.dummy)
	require.NoError(t, err)
	assert.Equal(t, HashCost, cost)
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuthorizer(t, true)

	p, err := a.Authenticate("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, Principal{Username: "alice"}, p)

	p, err = a.Authenticate("root", "toor")
	require.NoError(t, err)
	assert.True(t, p.Admin)

	_, err = a.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate("mallory", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCanAccess(t *testing.T) {
	a := newTestAuthorizer(t, true)

	tests := []struct {
		name      string
		principal Principal
		owner     string
		task      string
		want      bool
	}{
		{"admin sees everything", Principal{Username: "root", Admin: true}, "alice", "cats", true},
		{"owner sees own task", Principal{Username: "alice"}, "alice", "cats", true},
		{"stranger is denied", Principal{Username: "alice"}, "bob", "dogs", false},
		{"explicit grant", Principal{Username: "bob"}, "alice", "cats", true},
		{"grant is per task", Principal{Username: "bob"}, "alice", "dogs", false},
		{"wildcard grant", Principal{Username: "bob"}, "carol", "birds", true},
		{"empty principal", Principal{}, "", "cats", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CanAccess(tt.principal, tt.owner, tt.task))
		})
	}

	assert.True(t, a.CanAccessTaskKey(Principal{Username: "bob"}, "alice/cats"))
	assert.False(t, a.CanAccessTaskKey(Principal{Username: "bob"}, "malformed"))
}

func serve(a *Authorizer, req *http.Request) (*httptest.ResponseRecorder, Principal) {
	e := echo.New()
	var seen Principal
	e.Use(a.Middleware(func(c echo.Context) bool { return c.Path() == "/health" }))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/tasks/:owner/:task/status", func(c echo.Context) error {
		seen = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	}, a.RequireTask())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddleware(t *testing.T) {
	a := newTestAuthorizer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/alice/cats/status", nil)
	rec, _ := serve(a, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderWWWAuthenticate), "annotrain")

	req = httptest.NewRequest(http.MethodGet, "/api/tasks/alice/cats/status", nil)
	req.SetBasicAuth("alice", "secret")
	rec, p := serve(a, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", p.Username)

	req = httptest.NewRequest(http.MethodGet, "/api/tasks/bob/dogs/status", nil)
	req.SetBasicAuth("alice", "secret")
	rec, _ = serve(a, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_Disabled(t *testing.T) {
	a := newTestAuthorizer(t, false)

	rec, p := serve(a, httptest.NewRequest(http.MethodGet, "/api/tasks/bob/dogs/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, p.Admin)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("s3cret")))

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, HashCost, cost)

	_, err = HashPassword("")
	assert.Error(t, err)
}
