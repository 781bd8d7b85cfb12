// Package debug exposes local diagnostics for a running console session:
// prometheus metrics and a health probe. The listener is off unless a debug
// address is configured.
package debug

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mkarlsven/weather-console/internal/observability"
)

// Server wraps the debug HTTP listener.
type Server struct {
	srv       *http.Server
	logger    *zap.Logger
	cachePing func() error
	startTime time.Time
}

// New returns a debug server bound to addr. cachePing, when non-nil, is
// called by /health to check suggestion-cache reachability (memcached backend).
func New(addr string, cachePing func() error, logger *zap.Logger) *Server {
	s := &Server{
		logger:    logger,
		cachePing: cachePing,
		startTime: time.Now(),
	}

	router := mux.NewRouter()
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")
	router.HandleFunc("/health", s.getHealth).Methods("GET")

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving the debug endpoints.
func (s *Server) ListenAndServe() error {
	s.logger.Info("debug server starting", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Handler returns the underlying handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	checks := make(map[string]string)
	if s.cachePing != nil {
		if err := s.cachePing(); err == nil {
			checks["suggestionCache"] = "healthy"
		} else {
			checks["suggestionCache"] = "unhealthy"
			status = "degraded"
		}
	}

	resp := map[string]interface{}{
		"status":    status,
		"service":   "weather-console",
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
