package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	hits    *prometheus.CounterVec
	latency *prometheus.SummaryVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		hits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "url_hit_count",
				Help: "Number of times the given url was hit",
			},
			[]string{"method", "url", "status"},
		),
		latency: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "url_latency",
				Help:       "The latency quantiles for the given URL",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"method", "url"},
		),
	}
	reg.MustRegister(m.hits, m.latency)
	return m
}

// middleware records hits and latency per route pattern.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rctx := chi.RouteContext(r.Context())
			pattern := rctx.RoutePattern()
			if pattern == "" {
				return
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.latency.WithLabelValues(r.Method, pattern).Observe(float64(time.Since(start).Milliseconds()))
			m.hits.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Send()
		}()
		next.ServeHTTP(ww, r)
	})
}
