package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/schoolroster/roster/internal/services"
	"github.com/schoolroster/roster/internal/store"
	"github.com/schoolroster/roster/types"
)

const (
	maxFormMemory = 1 << 20
	dateLayout    = "2006-01-02"

	fieldToken        = "token"
	fieldUsername     = "username"
	fieldRole         = "role"
	fieldClassID      = "classId"
	fieldFirstName    = "firstName"
	fieldLastName     = "lastName"
	fieldAddress      = "address"
	fieldPhone        = "phone"
	fieldModel        = "model"
	fieldAssignedDate = "assignedDate"
)

// UserHandler provides the user endpoints of the API.
type UserHandler struct {
	userService *services.UserService
	respondJSON bool
}

// NewUserHandler constructs a handler. With respondJSON set, CreateUser
// answers with the created record instead of redirecting to the listing.
func NewUserHandler(userService *services.UserService, respondJSON bool) *UserHandler {
	return &UserHandler{
		userService: userService,
		respondJSON: respondJSON,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, respondJSON bool, logger *slog.Logger) {
	handler := NewUserHandler(userService, respondJSON)

	r.Get("/users", serve(logger, handler.ListUsers))
	r.Get("/getUser/{id}", serve(logger, handler.GetUser))
	r.Post("/createUser", serve(logger, handler.CreateUser))
	r.Post("/updateUser", serve(logger, handler.UpdateUser))
	r.Post("/updateUser/", serve(logger, handler.UpdateUser))
	r.Post("/deleteUser/{id}", serve(logger, handler.DeleteUser))
	r.Post("/removeFromClass/{id}", serve(logger, handler.RemoveFromClass))
}

func (h *UserHandler) ListUsers(r *http.Request) (Response, error) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return JSON{Status: http.StatusOK, Body: users}, nil
}

// GetUser answers null for ids that match nothing, malformed ones included.
func (h *UserHandler) GetUser(r *http.Request) (Response, error) {
	user, err := h.userService.Get(r.Context(), parseID(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return JSON{Status: http.StatusOK, Body: nil}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return JSON{Status: http.StatusOK, Body: user}, nil
}

func (h *UserHandler) CreateUser(r *http.Request) (Response, error) {
	if err := parseForm(r); err != nil {
		return JSON{Status: http.StatusBadRequest, Body: ErrorResponse{Error: "invalid form"}}, nil
	}

	_, classID := optionalClassID(r)
	in := services.NewUser{
		Email:        strings.TrimSpace(r.PostFormValue(fieldMail)),
		Password:     r.PostFormValue(fieldPassword),
		Username:     strings.TrimSpace(r.PostFormValue(fieldUsername)),
		Role:         types.ParseRole(r.PostFormValue(fieldRole)),
		ClassID:      classID,
		FirstName:    strings.TrimSpace(r.PostFormValue(fieldFirstName)),
		LastName:     strings.TrimSpace(r.PostFormValue(fieldLastName)),
		Address:      strings.TrimSpace(r.PostFormValue(fieldAddress)),
		Phone:        strings.TrimSpace(r.PostFormValue(fieldPhone)),
		Model:        strings.TrimSpace(r.PostFormValue(fieldModel)),
		AssignedDate: parseDate(r.PostFormValue(fieldAssignedDate)),
	}

	created, err := h.userService.Create(r.Context(), in)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if h.respondJSON {
		return JSON{Status: http.StatusCreated, Body: created}, nil
	}
	return Redirect{Target: adminListing}, nil
}

// UpdateUser patches the user identified by the token field. Missing or
// blank fields keep their stored values.
func (h *UserHandler) UpdateUser(r *http.Request) (Response, error) {
	if err := parseForm(r); err != nil {
		return JSON{Status: http.StatusBadRequest, Body: ErrorResponse{Error: "invalid form"}}, nil
	}

	token := strings.TrimSpace(r.PostFormValue(fieldToken))
	patch := types.UserPatch{
		Email:     optionalField(r, fieldMail),
		Username:  optionalField(r, fieldUsername),
		FirstName: optionalField(r, fieldFirstName),
		LastName:  optionalField(r, fieldLastName),
		Address:   optionalField(r, fieldAddress),
		Phone:     optionalField(r, fieldPhone),
		Model:     optionalField(r, fieldModel),
	}
	if role := optionalField(r, fieldRole); role != nil {
		parsed := types.ParseRole(*role)
		patch.Role = &parsed
	}
	if date := optionalField(r, fieldAssignedDate); date != nil {
		if parsed := parseDate(*date); !parsed.IsZero() {
			patch.AssignedDate = &parsed
		}
	}
	patch.ClassIDSet, patch.ClassID = optionalClassID(r)

	var password *string
	if value := r.PostFormValue(fieldPassword); value != "" {
		password = &value
	}

	user, err := h.userService.UpdateByToken(r.Context(), token, password, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Redirect{Target: adminListing}, nil
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return Redirect{Target: fmt.Sprintf("%s/%d", adminListing, user.ID)}, nil
}

// DeleteUser succeeds with an empty body whether or not the row existed.
func (h *UserHandler) DeleteUser(r *http.Request) (Response, error) {
	err := h.userService.Delete(r.Context(), parseID(r, "id"))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return Empty{Status: http.StatusOK}, nil
}

// RemoveFromClass clears the user's class and returns to the page of the
// class it left.
func (h *UserHandler) RemoveFromClass(r *http.Request) (Response, error) {
	previous, err := h.userService.RemoveFromClass(r.Context(), parseID(r, "id"))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("remove from class: %w", err)
	}
	if previous == nil {
		return Redirect{Target: adminListing}, nil
	}
	return Redirect{Target: fmt.Sprintf("/admin/manage/%d", *previous)}, nil
}

// parseDate accepts YYYY-MM-DD and returns the zero time for anything else.
func parseDate(value string) time.Time {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return parsed
}
