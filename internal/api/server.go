// Package api exposes the HTTP interface for the monitor service.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Stalin-143/monitor/internal/config"
	"github.com/Stalin-143/monitor/internal/metrics"
	"github.com/Stalin-143/monitor/internal/monitor"
	"github.com/Stalin-143/monitor/internal/registry"
)

// Server wires HTTP handlers to the registry.
type Server struct {
	router   chi.Router
	registry *registry.Registry
	stats    StatsProvider
	logger   *zap.Logger
	cfg      config.Config
}

// NewServer constructs a Server with middleware and routes. stats may be
// nil when no stats sink is wired; the stats endpoint then reports 503.
func NewServer(reg *registry.Registry, stats StatsProvider, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry: reg,
		stats:    stats,
		logger:   logger,
		cfg:      cfg,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/sites", func(r chi.Router) {
			r.Post("/", s.addSite)
			r.Get("/", s.listSites)
			r.Post("/check", s.checkSite)
			r.Post("/remove", s.removeSite)
			r.Get("/history", s.siteHistory)
		})
		r.Get("/stats", s.siteStats)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The registry is in-memory and always ready once constructed.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type addSiteRequest struct {
	URL      string `json:"url"`
	UseProxy bool   `json:"use_proxy"`
}

type siteRequest struct {
	URL string `json:"url"`
}

func (s *Server) addSite(w http.ResponseWriter, r *http.Request) {
	var req addSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	info, err := s.registry.Add(r.Context(), req.URL, req.UseProxy)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "monitoring started",
		"url":     req.URL,
		"info":    info,
	})
}

func (s *Server) checkSite(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	outcome, err := s.registry.Check(r.Context(), req.URL)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "site checked",
		"url":          outcome.URL,
		"changes":      outcome.Changes,
		"current_info": outcome.Info,
	})
}

func (s *Server) removeSite(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.registry.Remove(req.URL); err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "site removed from monitoring",
		"url":     req.URL,
	})
}

func (s *Server) listSites(w http.ResponseWriter, _ *http.Request) {
	summaries := s.registry.List()
	sites := make(map[string]monitor.ResourceSummary, len(summaries))
	for _, summary := range summaries {
		sites[summary.URL] = summary
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) siteHistory(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	history, err := s.registry.History(url)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":     url,
		"history": history,
	})
}

// writeRegistryError maps the registry error taxonomy to HTTP statuses.
func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, &monitor.ErrInvalidInput{}):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, &monitor.ErrDuplicateResource{}):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, &monitor.ErrResourceNotFound{}):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, &monitor.ErrFetchFailure{}):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, &monitor.ErrMissingContent{}):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("unexpected registry error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.status, time.Since(start))
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
