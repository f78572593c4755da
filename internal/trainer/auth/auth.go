// Package auth authenticates API callers with HTTP Basic credentials checked
// against bcrypt hashes and decides which tasks they may touch.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/ehsaniara/annotrain/pkg/config"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
)

const (
	// HashCost is the bcrypt cost used for new password hashes.
	HashCost = 12

	principalKey = "principal"
	wildcard     = "*"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Principal is an authenticated caller.
type Principal struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// anonymous is used for every request when authentication is disabled.
var anonymous = Principal{Username: "anonymous", Admin: true}

type user struct {
	hash  []byte
	admin bool
}

// Authorizer holds the configured users and task grants.
type Authorizer struct {
	enabled bool
	realm   string
	users   map[string]user
	grants  map[string][]string // username -> "owner/task" patterns
	dummy   []byte
	logger  *logger.Logger
}

// NewAuthorizer validates the configured password hashes and builds the
// grant table.
func NewAuthorizer(cfg config.AuthConfig) (*Authorizer, error) {
	a := &Authorizer{
		enabled: cfg.Enabled,
		realm:   cfg.Realm,
		users:   make(map[string]user, len(cfg.Users)),
		grants:  make(map[string][]string),
		logger:  logger.WithField("component", "auth"),
	}

	dummyCost := 0
	for _, u := range cfg.Users {
		cost, err := bcrypt.Cost([]byte(u.PasswordHash))
		if err != nil {
			return nil, errors.NewConfigError("auth", "users."+u.Username, fmt.Errorf("password hash: %w", err))
		}
		dummyCost = max(dummyCost, cost)
		a.users[u.Username] = user{hash: []byte(u.PasswordHash), admin: u.Admin}
	}
	if dummyCost == 0 {
		dummyCost = HashCost
	}
	for _, g := range cfg.Grants {
		a.grants[g.Username] = append(a.grants[g.Username], g.Owner+"/"+g.Task)
	}

	// Unknown users are checked against this hash so they take as long
	// as known ones; it uses the highest configured cost.
	dummy, err := bcrypt.GenerateFromPassword([]byte("annotrain"), dummyCost)
	if err != nil {
		return nil, err
	}
	a.dummy = dummy
	return a, nil
}

// Enabled reports whether requests must authenticate.
func (a *Authorizer) Enabled() bool {
	return a.enabled
}

// Authenticate checks a username and password.
func (a *Authorizer) Authenticate(username, password string) (Principal, error) {
	u, ok := a.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(a.dummy, []byte(password))
		return Principal{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{Username: username, Admin: u.admin}, nil
}

// CanAccess reports whether p may work on owner/task: admins may touch
// everything, owners their own tasks, everyone else needs a grant.
func (a *Authorizer) CanAccess(p Principal, owner, task string) bool {
	if p.Admin || (p.Username != "" && p.Username == owner) {
		return true
	}
	return lo.ContainsBy(a.grants[p.Username], func(pattern string) bool {
		grantOwner, grantTask, _ := strings.Cut(pattern, "/")
		return grantOwner == owner && (grantTask == task || grantTask == wildcard)
	})
}

// CanAccessTaskKey is CanAccess for an "owner/task" key.
func (a *Authorizer) CanAccessTaskKey(p Principal, taskKey string) bool {
	owner, task, ok := strings.Cut(taskKey, "/")
	return ok && a.CanAccess(p, owner, task)
}

// Middleware authenticates every request with HTTP Basic auth and stores
// the principal in the echo context. Paths for which skip returns true are
// served without credentials.
func (a *Authorizer) Middleware(skip func(c echo.Context) bool) echo.MiddlewareFunc {
	if !a.enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set(principalKey, anonymous)
				return next(c)
			}
		}
	}

	return echomw.BasicAuthWithConfig(echomw.BasicAuthConfig{
		Realm: a.realm,
		Skipper: func(c echo.Context) bool {
			return skip != nil && skip(c)
		},
		Validator: func(username, password string, c echo.Context) (bool, error) {
			p, err := a.Authenticate(username, password)
			if err != nil {
				a.logger.Debug("authentication failed", "username", username, "remoteIp", c.RealIP())
				return false, nil
			}
			c.Set(principalKey, p)
			return true, nil
		},
	})
}

// RequireTask rejects requests whose :owner/:task route parameters the
// principal may not access.
func (a *Authorizer) RequireTask() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !a.CanAccess(PrincipalFrom(c), c.Param("owner"), c.Param("task")) {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrPermissionDenied.Error())
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Middleware.
func PrincipalFrom(c echo.Context) Principal {
	p, _ := c.Get(principalKey).(Principal)
	return p
}

// HashPassword returns a bcrypt hash suitable for the users section of
// the configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
