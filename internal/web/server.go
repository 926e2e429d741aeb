// Package web provides the HTTP server and handlers for the sheet relay.
package web

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/sheetrelay/internal/config"
	"github.com/JonMunkholm/sheetrelay/internal/metrics"
	"github.com/JonMunkholm/sheetrelay/internal/sheet"
	mw "github.com/JonMunkholm/sheetrelay/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Loader produces the sheet result for one request. *sheet.Relay implements it.
type Loader interface {
	Load(ctx context.Context) sheet.Result
}

// Server is the HTTP server for the relay.
type Server struct {
	cfg     *config.Config
	loader  Loader
	metrics *metrics.Metrics
	logger  *slog.Logger
	static  fs.FS
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance. m may be nil to disable metrics.
func NewServer(cfg *config.Config, loader Loader, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	static, err := newStaticFS(cfg.Static.Dir)
	if err != nil {
		return nil, fmt.Errorf("static files: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		loader:  loader,
		metrics: m,
		logger:  logger,
		static:  static,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies, s.logger))
	s.router.Use(mw.Logger(s.logger))
	if s.metrics != nil {
		s.router.Use(mw.Metrics(s.metrics))
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/data", s.handleData)
	s.router.Get("/favicon.ico", s.handleFavicon)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileOnly(s.static)))

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	if s.cfg.Server.DebugEnabled() {
		s.router.Mount("/debug", middleware.Profiler())
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Sheet cells often link to hosted images, hence https: for img-src.
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data: https:; connect-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
