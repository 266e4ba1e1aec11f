// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wayneaws/studenthub/internal/discord"
	"github.com/wayneaws/studenthub/internal/newsletter"
	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/config"
	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/middleware"
	"github.com/wayneaws/studenthub/internal/platform/respond"
	"github.com/wayneaws/studenthub/internal/users/account"
	"github.com/wayneaws/studenthub/internal/users/admin"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 only when every dependency answers.
	Readiness http.HandlerFunc

	// Auth handles signup, login, token rotation and password recovery.
	Auth *auth.Handler

	// Account shares /auth with Auth and owns /upload.
	Account *account.Handler

	// Admin is the moderation console.
	Admin *admin.Handler

	Newsletter *newsletter.Handler
	Discord    *discord.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. The global per-IP limiter stops when ctx is
// cancelled.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	// CORS runs before anything that can reject a request, so browsers can
	// read 401 and 429 bodies too.
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(
		middleware.NewIPLimiter(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst),
		middleware.ClientIP(cfg.TrustProxy),
	))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(chimw.CleanPath)

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/auth", func(router chi.Router) {
		h.Auth.RegisterRoutes(router)
		h.Account.RegisterRoutes(router)
	})
	r.Mount("/upload", h.Account.UploadRoutes())
	r.Mount("/newsletter", h.Newsletter.Routes())
	r.Mount("/discord", h.Discord.Routes())
	r.Mount("/admin", h.Admin.Routes())

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the root router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
