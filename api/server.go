// Package api provides the HTTP surface for the calculator pipeline.
// The API only binds request fields to the runner and serializes results;
// it never performs cost logic itself.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server
type Server struct {
	handler *Handler
	router  *chi.Mux
	version string
}

// NewServer creates the API server around a configured runner
func NewServer(handler *Handler, version string) *Server {
	s := &Server{
		handler: handler,
		router:  chi.NewRouter(),
		version: version,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/calculators", s.handler.ListCalculators)
		r.Get("/calculators/{key}/schema", s.handler.GetSchema)
		r.Post("/calculators/{key}/compute", s.handler.Compute)

		r.Get("/pricing/{region}", s.handler.GetPricing)

		r.Get("/records/latest", s.handler.LatestRecord)
		r.Get("/records/{key}/history", s.handler.History)

		r.Get("/export/{key}/csv", s.handler.ExportCSV)
		r.Get("/export/{key}/print", s.handler.ExportPrint)
		r.Get("/export/{key}/summary", s.handler.ExportSummary)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}
