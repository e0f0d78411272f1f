// Package server exposes the read-mostly HTTP + WebSocket API over the
// scanner's stores: opportunities, paper trades, performance, risk, and
// live alert streaming for the dashboard.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/seerscan/seer/internal/server/handler"
	"github.com/seerscan/seer/internal/server/middleware"
	"github.com/seerscan/seer/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health        *handler.HealthHandler
	Opportunities *handler.OpportunityHandler
	Trades        *handler.TradeHandler
	Risk          *handler.RiskHandler
	Metrics       *handler.MetricsHandler
	Quotes        *handler.QuoteHandler
	Status        *handler.StatusHandler
}

// Server is the headless HTTP + WebSocket API server for the scanner.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth) and attaches the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required for the mux; auth middleware wraps the
	// whole chain, so a configured API key still applies).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)

	// Opportunity endpoints.
	mux.HandleFunc("GET /api/opportunities", handlers.Opportunities.ListRecent)

	// Paper trade endpoints.
	mux.HandleFunc("GET /api/trades/open", handlers.Trades.ListOpen)
	mux.HandleFunc("GET /api/trades/closed", handlers.Trades.ListClosed)
	mux.HandleFunc("GET /api/performance", handlers.Trades.Performance)

	// Risk endpoints.
	mux.HandleFunc("GET /api/risk", handlers.Risk.GetMetrics)
	mux.HandleFunc("GET /api/risk/events", handlers.Risk.ListEvents)
	mux.HandleFunc("POST /api/risk/killswitch", handlers.Risk.ActivateKillSwitch)
	mux.HandleFunc("DELETE /api/risk/killswitch", handlers.Risk.DeactivateKillSwitch)

	// Historical metrics.
	mux.HandleFunc("GET /api/metrics", handlers.Metrics.ListRecent)

	// Cached quotes.
	mux.HandleFunc("GET /api/quotes/{id}", handlers.Quotes.GetQuote)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
