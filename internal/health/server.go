// Package health provides the HTTP sidecar served while the scheduler is
// resident: liveness, readiness, and the Prometheus scrape endpoint.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/metrics"
)

// DatabasePinger checks pick-store connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// StatusResponse is the JSON body for /health and /live.
type StatusResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ReadyResponse is the JSON body for /ready.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
	LastRun   string            `json:"last_run,omitempty"`
	LastRunAt string            `json:"last_run_at,omitempty"`
	Duration  string            `json:"duration,omitempty"`
}

// Config holds the sidecar configuration.
type Config struct {
	ServiceName string
	Port        int
	MetricsPath string
	Logger      *logrus.Logger
	DB          DatabasePinger
}

// Server exposes health probes plus the metrics scrape endpoint for the
// resident scheduler process. One-shot runs never start it.
type Server struct {
	serviceName string
	port        int
	metricsPath string
	logger      *logrus.Logger
	db          DatabasePinger
	server      *http.Server

	mu        sync.RWMutex
	ready     bool
	lastRun   string
	lastRunAt time.Time
}

// NewServer creates the sidecar server.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Server{
		serviceName: cfg.ServiceName,
		port:        port,
		metricsPath: metricsPath,
		logger:      logger,
		db:          cfg.DB,
	}
}

// SetReady marks the service ready to be scheduled against.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// RecordRun notes the outcome of the most recent evaluation run; /ready
// surfaces it so operators can see staleness without reading artifacts.
func (s *Server) RecordRun(status string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = status
	s.lastRunAt = at
}

// Start serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle(s.metricsPath, metrics.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.port,
			"service": s.serviceName,
		}).Info("Health server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Health server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
}

// Shutdown drains the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Health server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok", Service: s.serviceName})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	healthy := true

	s.mu.RLock()
	ready := s.ready
	lastRun := s.lastRun
	lastRunAt := s.lastRunAt
	s.mu.RUnlock()

	if ready {
		checks["service"] = "ok"
	} else {
		healthy = false
		checks["service"] = "not_ready"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			healthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	resp := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		LastRun:  lastRun,
		Duration: time.Since(start).String(),
	}
	if !lastRunAt.IsZero() {
		resp.LastRunAt = lastRunAt.UTC().Format(time.RFC3339)
	}

	if healthy {
		resp.Status = "ok"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
