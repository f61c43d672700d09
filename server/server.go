// Package server exposes saved documents over HTTP: their serialized state,
// HTML and Markdown renderings, product embed insertion and HTML import.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bitbriks/bitbrik/store"
)

// Documents is the persistence the server needs. *store.Store implements it.
type Documents interface {
	Save(ctx context.Context, d store.Document) (store.Document, error)
	Get(ctx context.Context, id string) (store.Document, error)
	List(ctx context.Context) ([]store.Document, error)
	Delete(ctx context.Context, id string) error
}

// Config configures a Server.
type Config struct {
	Documents Documents

	// Registry receives the HTTP metrics and backs /metrics. A private
	// registry is created when nil.
	Registry *prometheus.Registry

	// Sanitize filters imported HTML.
	Sanitize bool

	Logger zerolog.Logger
}

// Server routes the document API.
type Server struct {
	docs     Documents
	sanitize bool
	logger   zerolog.Logger
	metrics  *metrics
	router   chi.Router
}

func New(cfg Config) *Server {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		docs:     cfg.Documents,
		sanitize: cfg.Sanitize,
		logger:   cfg.Logger,
		metrics:  newMetrics(reg),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logging)
	r.Use(s.metrics.middleware)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/import", s.importHTML)
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.listDocuments)
			r.Post("/", s.createDocument)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getDocument)
				r.Delete("/", s.deleteDocument)
				r.Get("/html", s.documentHTML)
				r.Get("/markdown", s.documentMarkdown)
				r.Put("/products", s.insertProducts)
			})
		})
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
