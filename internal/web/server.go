// Package web provides the HTTP server and handlers for the enrollment dashboard.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/enrollview/internal/config"
	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/logging"
	"github.com/JonMunkholm/enrollview/internal/metrics"
	"github.com/JonMunkholm/enrollview/internal/web/middleware"
)

// Server is the HTTP server for the enrollment dashboard.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	metrics  *metrics.Metrics
	validate *validator.Validate
	router   *chi.Mux
	server   *http.Server

	limiter       *middleware.RateLimiter
	uploadLimiter *middleware.RateLimiter
}

// NewServer creates a Server. m may be nil, in which case /metrics is not
// served and requests are not counted.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		metrics:  m,
		validate: newValidator(),
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute)
		s.uploadLimiter = middleware.NewRateLimiter(cfg.Rate.UploadLimit)
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	if s.limiter != nil {
		s.router.Use(s.limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/open", s.handleOpenReport)
	s.router.Get("/dlc", s.handleMarkerReport)
	s.router.With(s.uploadGuards()...).Post("/upload", s.handleUploadForm)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Dataset lifecycle
		r.With(s.uploadGuards()...).Post("/dataset", s.handleUpload)
		r.Delete("/dataset", s.handleResetDataset)
		r.Get("/dataset", s.handleGetDataset)
		r.Get("/dataset/export", s.handleExport)

		// Hierarchical selection
		r.Get("/subjects", s.handleSubjects)
		r.Get("/subjects/{subject}/courses", s.handleCourses)
		r.Get("/subjects/{subject}/courses/{num}/sections", s.handleSections)
		r.Get("/subjects/{subject}/courses/{num}/open", s.handleOpenSections)
		r.Get("/subjects/{subject}/courses/{num}/locations", s.handleCourseLocations)
		r.Get("/sections/{classNbr}", s.handleSection)

		// Aggregates
		r.Get("/locations", s.handleLocations)

		// Marker (DLC) sections
		r.Get("/dlc/courses", s.handleMarkerCourses)
		r.Get("/dlc/courses/{subject}/{num}", s.handleMarkerCourse)
	})
}

// uploadGuards are the middleware in front of dataset uploads.
func (s *Server) uploadGuards() []func(http.Handler) http.Handler {
	if s.uploadLimiter == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{s.uploadLimiter.Handler}
}

// Start listens on the configured address until Shutdown is called.
// Rate-limiter bookkeeping runs until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	for _, l := range []*middleware.RateLimiter{s.limiter, s.uploadLimiter} {
		if l != nil {
			go l.Cleanup(ctx, time.Minute)
		}
	}

	logging.FromContext(ctx).Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
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
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
