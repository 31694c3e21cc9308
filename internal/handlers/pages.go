package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/schoolroster/roster/internal/storage"
)

const (
	pageIndex       = "index.html"
	pageWelcome     = "welcome.html"
	pageAdminEdit   = "admin/edit.html"
	pageAdminCreate = "admin/create.html"
	pageAdminManage = "admin/manage.html"
)

// PageHandler delivers the HTML pages and static assets from page storage.
type PageHandler struct {
	pages *storage.Storage
}

func NewPageHandler(pages *storage.Storage) *PageHandler {
	return &PageHandler{pages: pages}
}

// PageRouter registers the page routes and the static asset fallback.
func PageRouter(r chi.Router, pages *storage.Storage, logger *slog.Logger) {
	handler := NewPageHandler(pages)

	r.Get("/", serve(logger, handler.page(pageIndex)))
	r.Get("/welcome", serve(logger, handler.page(pageWelcome)))
	r.Get("/admin", serve(logger, func(r *http.Request) (Response, error) {
		return Redirect{Target: adminListing}, nil
	}))
	r.Get("/admin/edit", serve(logger, handler.page(pageAdminEdit)))
	r.Get("/admin/edit/{id}", serve(logger, handler.page(pageAdminEdit)))
	r.Get("/admin/create", serve(logger, handler.page(pageAdminCreate)))
	r.Get("/admin/manage/{id}", serve(logger, handler.page(pageAdminManage)))
	r.NotFound(serve(logger, handler.Asset))
}

func (h *PageHandler) page(key string) handlerFunc {
	return func(r *http.Request) (Response, error) {
		return h.open(r, key)
	}
}

// Asset serves any other GET from storage, keyed by the request path.
func (h *PageHandler) Asset(r *http.Request) (Response, error) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return JSON{Status: http.StatusNotFound, Body: ErrorResponse{Error: "not found"}}, nil
	}
	key := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	return h.open(r, key)
}

func (h *PageHandler) open(r *http.Request, key string) (Response, error) {
	content, err := h.pages.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return JSON{Status: http.StatusNotFound, Body: ErrorResponse{Error: "not found"}}, nil
		}
		return nil, fmt.Errorf("open page %q: %w", key, err)
	}
	return File{ContentType: contentTypeFor(key), Content: content}, nil
}

func contentTypeFor(key string) string {
	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
