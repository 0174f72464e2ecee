// Package server exposes the dashboard over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"support-insights-go/internal/dashboard"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/session"
)

type Server struct {
	svc  *dashboard.Service
	auth session.Authenticator
}

func New(svc *dashboard.Service, auth session.Authenticator) *Server {
	return &Server{svc: svc, auth: auth}
}

// Handler returns the routed, logged and authenticated handler tree.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/interactions", s.handleInteractions)
	api.HandleFunc("GET /api/interactions/{id}", s.handleInteraction)
	api.HandleFunc("GET /api/interactions/{id}/transcript", s.handleTranscript)
	api.HandleFunc("GET /api/filters", s.handleFilters)
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/dashboard/export", s.handleExport)
	api.HandleFunc("GET /api/dashboard/charts/{kind}", s.handleChart)
	api.HandleFunc("POST /api/insights", s.handleGenerateInsight)
	api.HandleFunc("GET /api/insights/latest", s.handleLatestInsight)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/api/", session.Middleware(s.auth)(api))

	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.RequestID(r)
		r.Header.Set(logger.RequestIDHeader, id)
		w.Header().Set(logger.RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		entry := logger.New().WithRequest(r).WithFields(logrus.Fields{
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if rec.status >= 500 {
			entry.Warn("request finished")
			return
		}
		entry.Info("request finished")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
