// Package server exposes the conversation engine and review queue over a
// JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taxpilot-ai/taxpilot/internal/engine"
	"github.com/taxpilot-ai/taxpilot/internal/extract"
	"github.com/taxpilot-ai/taxpilot/internal/service"
)

// maxBodyBytes caps request bodies. W-2 uploads are base64 images, so the
// ceiling is generous.
const maxBodyBytes = 10 << 20

// Server is the TaxPilot HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// Config holds the dependencies and settings for creating a Server.
type Config struct {
	Engine    *engine.Engine
	Storage   service.Storage
	Extractor extract.Extractor

	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// New creates an HTTP server with all routes configured.
func New(cfg Config) *Server {
	h := &handlers{
		engine:    cfg.Engine,
		storage:   cfg.Storage,
		extractor: cfg.Extractor,
		version:   cfg.Version,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("POST /api/upload", h.handleUpload)
	mux.HandleFunc("GET /api/sessions/{session_id}", h.handleGetSession)
	mux.HandleFunc("GET /api/sessions/{session_id}/tax-return", h.handleGetTaxReturn)
	mux.HandleFunc("GET /api/reviews", h.handleListReviews)
	mux.HandleFunc("GET /api/reviews/{review_id}", h.handleGetReview)
	mux.HandleFunc("PUT /api/reviews/{review_id}", h.handleResolveReview)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 60 * time.Second
	}

	handler := withRequestLog(withRecovery(mux))

	return &Server{
		handler: handler,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe starts serving and blocks until the server stops.
func (s *Server) ListenAndServe() error {
	slog.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
