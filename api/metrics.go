// Package api exposes the oracle's health, status, metrics and job
// history over HTTP via a gorilla/mux router.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/solana-vrf/oracle-backend/metrics"
	"github.com/solana-vrf/oracle-backend/storage"
)

const recentJobsLimit = 50

// JobHistory is satisfied by storage.JobStore; narrowed to the one method
// this package needs, so tests can substitute a stub.
type JobHistory interface {
	Recent(limit int) []storage.JobRecord
}

// Server serves the oracle's health, status, metrics and job-history
// endpoints.
type Server struct {
	collector *metrics.Collector
	jobs      JobHistory
	router    *mux.Router
	port      string
}

// NewServer builds a Server. jobs may be nil, in which case /api/jobs
// always returns an empty list.
func NewServer(collector *metrics.Collector, jobs JobHistory, port string) *Server {
	s := &Server{
		collector: collector,
		jobs:      jobs,
		router:    mux.NewRouter(),
		port:      port,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/status", s.statusHandler).Methods("GET")
	s.router.HandleFunc("/metrics", s.metricsHandler).Methods("GET")
	s.router.HandleFunc("/metrics/prometheus", s.prometheusHandler).Methods("GET")
	s.router.HandleFunc("/api/jobs", s.jobsHandler).Methods("GET")

	s.router.Use(s.corsMiddleware)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router returns the underlying mux.Router, for tests that want to drive
// requests without binding a port.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start blocks serving on the server's configured port.
func (s *Server) Start() error {
	log.Info().Str("port", s.port).Msg("starting oracle HTTP server")
	return http.ListenAndServe(":"+s.port, s.router)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.collector.Snapshot()
	writeJSON(w, map[string]interface{}{
		"status":               "running",
		"pending_fulfillments": snap.PendingFulfillments,
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.collector.Snapshot())
}

func (s *Server) prometheusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.collector.Prometheus()))
}

func (s *Server) jobsHandler(w http.ResponseWriter, r *http.Request) {
	var jobs []storage.JobRecord
	if s.jobs != nil {
		jobs = s.jobs.Recent(recentJobsLimit)
	}
	if jobs == nil {
		jobs = []storage.JobRecord{}
	}
	writeJSON(w, jobs)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
