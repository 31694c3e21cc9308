package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/schoolroster/roster/internal/services"
	"github.com/schoolroster/roster/internal/store"
)

const fieldGrade = "grade"

// ClassHandler provides the class endpoints of the API.
type ClassHandler struct {
	classService *services.ClassService
}

func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ClassRouter registers class routes on the given router.
func ClassRouter(r chi.Router, classService *services.ClassService, logger *slog.Logger) {
	handler := NewClassHandler(classService)

	r.Get("/classes", serve(logger, handler.ListClasses))
	r.Get("/getClass/{id}", serve(logger, handler.GetClass))
	r.Post("/createClass", serve(logger, handler.CreateClass))
}

func (h *ClassHandler) ListClasses(r *http.Request) (Response, error) {
	classes, err := h.classService.List(r.Context())
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return JSON{Status: http.StatusOK, Body: classes}, nil
}

func (h *ClassHandler) GetClass(r *http.Request) (Response, error) {
	class, err := h.classService.Get(r.Context(), parseID(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return JSON{Status: http.StatusOK, Body: nil}, nil
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return JSON{Status: http.StatusOK, Body: class}, nil
}

func (h *ClassHandler) CreateClass(r *http.Request) (Response, error) {
	if err := parseForm(r); err != nil {
		return JSON{Status: http.StatusBadRequest, Body: ErrorResponse{Error: "invalid form"}}, nil
	}

	class, err := h.classService.Create(r.Context(), strings.TrimSpace(r.PostFormValue(fieldGrade)))
	if err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return Redirect{Target: fmt.Sprintf("/admin/manage/%d", class.ID)}, nil
}
