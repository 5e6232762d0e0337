// Package web serves the comparison page, its form endpoints, a JSON API
// and CSV downloads.
package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/config"
	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"github.com/JonMunkholm/regioncompare/internal/session"
	webmw "github.com/JonMunkholm/regioncompare/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server of the comparison app.
type Server struct {
	store    *core.Store
	sessions *session.Manager
	avail    dataset.Availability
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer wires routes over a loaded store and its session manager.
func NewServer(store *core.Store, sessions *session.Manager, avail dataset.Availability, cfg *config.Config) *Server {
	s := &Server{
		store:    store,
		sessions: sessions,
		avail:    avail,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/download/merged_country_data.csv", s.handleDownloadMerged)

	// Compare and export build tables, so they get the tighter limit
	compareLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		compareLimit = s.newRateLimiter(s.cfg.Rate.CompareLimit, time.Minute).middleware
	}

	// Page routes operate on the browser's workspace
	s.router.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleIndex)
		r.Post("/region", s.handleSetRegion)
		r.Post("/countries/toggle", s.handleToggleCountry)
		r.Post("/countries/select-all", s.handleSelectAll)
		r.Post("/countries/clear", s.handleClearCountries)
		r.Post("/indicators/toggle", s.handleToggleIndicator)

		r.With(compareLimit).Post("/compare", s.handleCompare)
		r.With(compareLimit).Get("/compare/export.csv", s.handleExportTable)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(&s.cfg.Security))

		r.Get("/regions", s.handleAPIRegions)
		r.Get("/regions/{region}/countries", s.handleAPICountries)
		r.Get("/indicators", s.handleAPIIndicators)
		r.Get("/status", s.handleAPIStatus)
		r.With(compareLimit).Post("/compare", s.handleAPICompare)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
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
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:")
		}
		next.ServeHTTP(w, r)
	})
}
