package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/schoolroster/roster/config"
	"github.com/schoolroster/roster/internal/auth"
	"github.com/schoolroster/roster/internal/db"
	"github.com/schoolroster/roster/internal/handlers"
	"github.com/schoolroster/roster/internal/services"
	"github.com/schoolroster/roster/internal/storage"
	"github.com/schoolroster/roster/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sqlx.DB
	pages      storage.ObjectStorage
	logger     *slog.Logger
}

// New opens the database and page storage and wires the router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pages, err := storage.NewBackend(ctx, cfg.Pages)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("pages backend: %w", err)
	}

	router, err := NewRouter(cfg, dbConn, storage.NewStorage(pages), logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		pages:      pages,
		logger:     logger,
	}, nil
}

// NewRouter builds the handler tree over an open database handle.
func NewRouter(cfg config.Config, dbConn *sqlx.DB, pages *storage.Storage, logger *slog.Logger) (*chi.Mux, error) {
	hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		return nil, err
	}
	if !cfg.Auth.StrictRoleCheck {
		logger.Warn("STRICT_ROLE_CHECK is disabled: every signed-in user can open /admin/ pages")
	}

	userRepo := store.NewUserRepository(dbConn)
	classRepo := store.NewClassRepository(dbConn)

	userService := services.NewUserService(userRepo, hasher, auth.NewTokenIssuer(cfg.Auth.TokenSecret), services.UserOptions{
		DeriveUsername:   cfg.API.UsernameMode == config.UsernameDerive,
		IncludeRelations: cfg.API.IncludeRelations,
	})
	classService := services.NewClassService(classRepo, cfg.API.IncludeRelations)

	gate := handlers.NewSessionGate(userService, cfg.Auth.StrictRoleCheck, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		gate.Middleware,
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, logger)
	router.Route("/api", func(r chi.Router) {
		handlers.UserRouter(r, userService, cfg.API.CreateResponse == config.CreateRespondJSON, logger)
		handlers.ClassRouter(r, classService, logger)
	})
	handlers.PageRouter(router, pages, logger)

	return router, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the database and storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.db != nil {
		_ = s.db.Close()
	}
	if closer, ok := s.pages.(io.Closer); ok {
		_ = closer.Close()
	}
	return err
}
