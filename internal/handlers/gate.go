package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/schoolroster/roster/internal/services"
	"github.com/schoolroster/roster/internal/store"
	"github.com/schoolroster/roster/types"
)

const (
	tokenCookie  = "token"
	loginPath    = "/"
	welcomePath  = "/welcome"
	adminPrefix  = "/admin/"
	adminHome    = "/admin"
	adminListing = "/admin/edit"
)

var restrictedPrefixes = []string{welcomePath, adminPrefix}

// Decision is the outcome of the gate for one request. A denied request
// carries the redirect target.
type Decision struct {
	Allowed bool
	Target  string
	User    *types.User
}

func allow(user *types.User) Decision {
	return Decision{Allowed: true, User: user}
}

func deny(target string) Decision {
	return Decision{Target: target}
}

// SessionGate guards the restricted pages with the "token" cookie.
type SessionGate struct {
	users           *services.UserService
	strictRoleCheck bool
	logger          *slog.Logger
}

// NewSessionGate constructs the gate. With strictRoleCheck false any
// authenticated user may open admin pages, matching the legacy app.
func NewSessionGate(users *services.UserService, strictRoleCheck bool, logger *slog.Logger) *SessionGate {
	return &SessionGate{
		users:           users,
		strictRoleCheck: strictRoleCheck,
		logger:          logger,
	}
}

// Middleware applies Decide to every request.
func (g *SessionGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := g.Decide(r)
		if err != nil {
			g.logger.ErrorContext(r.Context(), "session lookup failed", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !decision.Allowed {
			Redirect{Target: decision.Target}.write(w, r)
			return
		}
		if decision.User != nil {
			r = r.WithContext(withUser(r.Context(), *decision.User))
		}
		next.ServeHTTP(w, r)
	})
}

// Decide classifies the path and, for restricted ones, resolves the
// session token and checks the role. A path is restricted when its raw or
// its cleaned form is.
func (g *SessionGate) Decide(r *http.Request) (Decision, error) {
	raw := r.URL.Path
	cleaned := path.Clean("/" + raw)
	if !isRestricted(raw) && !isRestricted(cleaned) {
		return allow(nil), nil
	}

	cookie, err := r.Cookie(tokenCookie)
	if err != nil || cookie.Value == "" {
		return deny(loginPath), nil
	}

	user, err := g.users.ResolveToken(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return deny(loginPath), nil
		}
		return Decision{}, err
	}

	adminPath := isAdminPath(raw) || isAdminPath(cleaned)
	if adminPath && g.strictRoleCheck && user.Role != types.RoleAdmin {
		return deny(welcomePath), nil
	}
	return allow(&user), nil
}

func isRestricted(urlPath string) bool {
	for _, prefix := range restrictedPrefixes {
		if strings.HasPrefix(urlPath, prefix) {
			return true
		}
	}
	return false
}

func isAdminPath(urlPath string) bool {
	return strings.HasPrefix(urlPath, adminPrefix)
}
