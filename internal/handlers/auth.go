package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/schoolroster/roster/internal/services"
	"github.com/schoolroster/roster/types"
)

const (
	fieldMail     = "mail"
	fieldPassword = "password"
)

// AuthHandler provides the login endpoint.
type AuthHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, logger *slog.Logger) {
	handler := NewAuthHandler(userService, logger)

	r.Post("/login", serve(logger, handler.Login))
}

// Login checks mail and password. On success it sets the token cookie and
// sends the user to the page for its role; any failure goes back to the
// login page without a cookie.
func (h *AuthHandler) Login(r *http.Request) (Response, error) {
	if err := parseForm(r); err != nil {
		return Redirect{Target: loginPath}, nil
	}

	email := strings.TrimSpace(r.PostFormValue(fieldMail))
	password := r.PostFormValue(fieldPassword)

	user, err := h.userService.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return Redirect{Target: loginPath}, nil
		}
		return nil, err
	}

	cookie := &http.Cookie{
		Name:  tokenCookie,
		Value: *user.Token,
		Path:  "/",
	}
	return Redirect{Target: homeFor(user.Role), Cookies: []*http.Cookie{cookie}}, nil
}

func homeFor(role types.Role) string {
	switch role {
	case types.RoleAdmin:
		return adminHome
	default:
		return welcomePath
	}
}
