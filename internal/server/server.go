// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads env config → passed to Server
// Server.New() creates: sqlite.DB → services → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/memories-api/internal/auth"
	"github.com/sakif/memories-api/internal/handler"
	"github.com/sakif/memories-api/internal/middleware"
	sqliteRepo "github.com/sakif/memories-api/internal/repository/sqlite"
	"github.com/sakif/memories-api/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port               int
	DBPath             string
	UploadDir          string // where uploaded media files are stored and served from
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns a database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the file lock.
// This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Create the database connection (sqlite.New)
//  2. Create the service layer with the DB
//  3. Create the handlers with the services
//  4. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not the repositories or DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package. Import aliases are common in Go when
// package names would otherwise collide or be unclear.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("server: JWT_SECRET must be set — sessions cannot be signed without it")
	}
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		return nil, errors.New("server: GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set")
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /register         → GitHub code → session token (public)
// GET    /uploads/*        → Uploaded media files (public)
// GET    /memories         → Timeline of the caller's memories (auth)
// GET    /memories/{id}    → One full memory (auth)
// POST   /memories         → Create a memory (auth)
// PUT    /memories/{id}    → Replace a memory (auth)
// DELETE /memories/{id}    → Delete a memory (auth)
// POST   /upload           → Store one media file (public)
//
// /upload takes no session token. The frontend uploads the cover file BEFORE
// submitting the memory form, and the uploaded file is only a blob behind a
// random name until a memory references it — so the endpoint's defenses are
// the size cap and the MIME allowlist, not authentication.
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. CORS — the frontend is a separate SPA on another origin
// 5. Logger — logs each request with timing info
//
// The audit middleware is NOT global: it covers the controller routes
// (/memories and /upload) but not /register, whose body carries a single-use
// OAuth code that has no business sitting in an audit table.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS)
	s.router.Use(middleware.Logger(s.logger))

	// === AUTH PLUMBING ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	github := auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret)

	// === SERVICES ===
	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) → implements the repository interfaces
	//   Services receive the repository interfaces
	//   Handlers receive the services
	//
	// Notice: the handlers never touch the database directly.
	// The services never touch HTTP. Clean separation!
	authService := service.NewAuthService(s.db, github, tokens, s.logger)
	memoryService := service.NewMemoryService(s.db, s.logger)
	auditService := service.NewAuditService(s.db, s.logger)

	// === HANDLERS ===
	authHandler := handler.NewAuthHandler(authService, s.logger)
	memoryHandler := handler.NewMemoryHandler(memoryService, s.logger)
	uploadHandler, err := handler.NewUploadHandler(s.config.UploadDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating upload handler: %w", err)
	}

	audit := middleware.Audit(auditService, s.logger)

	// === PUBLIC ROUTES ===
	s.router.Post("/register", authHandler.HandleRegister)

	// Serve the uploaded files straight off disk.
	// http.StripPrefix removes "/uploads/" from the URL path before lookup,
	// so GET /uploads/abc.jpg → serves {UploadDir}/abc.jpg
	//
	// noListing refuses directory paths: without it, http.FileServer would
	// answer GET /uploads/ with an HTML index of every stored filename.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.config.UploadDir)))
	s.router.Handle("/uploads/*", noListing(fileServer))

	// The upload endpoint is public but still audited — the middleware records
	// media requests by their metadata instead of buffering the body.
	s.router.Group(func(r chi.Router) {
		r.Use(audit)
		r.Post("/upload", uploadHandler.HandleUpload)
	})

	// === PROTECTED ROUTES ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Use(audit)

		r.Get("/memories", memoryHandler.HandleList)
		r.Get("/memories/{id}", memoryHandler.HandleGet)
		r.Post("/memories", memoryHandler.HandleCreate)
		r.Put("/memories/{id}", memoryHandler.HandleEdit)
		r.Delete("/memories/{id}", memoryHandler.HandleDelete)
	})

	return nil
}

// noListing lets the file server answer file paths only. A request for a
// directory (any path ending in "/") is a 404 — the files behind /uploads/
// have unguessable names, and an index page would hand the full list to
// anyone who asked.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
