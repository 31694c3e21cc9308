package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/schoolroster/roster/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// invalidID stands in for a path id that is not a number. Store ids start
// at 1, so lookups with it miss instead of failing.
const invalidID = 0

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

// UserFromContext returns the user resolved by the session gate.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func parseID(r *http.Request, param string) int {
	id, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, param)))
	if err != nil {
		return invalidID
	}
	return id
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

// optionalField returns nil when the field is missing or blank, so callers
// can leave the stored value untouched.
func optionalField(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := strings.TrimSpace(values[0])
	if value == "" {
		return nil
	}
	return &value
}

// optionalClassID distinguishes a missing field from one that should clear
// the class. A present value that is not a number clears it as well.
func optionalClassID(r *http.Request) (set bool, id *int) {
	values, ok := r.PostForm[fieldClassID]
	if !ok || len(values) == 0 {
		return false, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil {
		return true, nil
	}
	return true, &parsed
}
