// Package server exposes the casino gateway over HTTP: the blackjack
// round actions, the stateless minigames, health, and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"vegas-casino-service/internal/game"
	"vegas-casino-service/internal/game/blackjack"
	"vegas-casino-service/internal/metrics"
	"vegas-casino-service/internal/scoring"
)

// HealthChecker reports whether one backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Config holds the collaborators for a Server.
type Config struct {
	Addr     string
	Table    *blackjack.Table
	Games    *game.Registry
	Sink     scoring.Sink
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Checkers are probed by the health endpoint, keyed by dependency name.
	Checkers map[string]HealthChecker
}

// Server is the HTTP front of the casino service.
type Server struct {
	table    *blackjack.Table
	games    *game.Registry
	sink     scoring.Sink
	metrics  *metrics.Metrics
	checkers map[string]HealthChecker

	httpServer *http.Server
}

// New creates a Server and wires its routes.
func New(cfg Config) *Server {
	s := &Server{
		table:    cfg.Table,
		games:    cfg.Games,
		sink:     cfg.Sink,
		metrics:  cfg.Metrics,
		checkers: cfg.Checkers,
	}
	if s.sink == nil {
		s.sink = scoring.Nop{}
	}
	if s.games == nil {
		s.games = game.NewRegistry()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/blackjack/deal", s.handleDeal)
	mux.HandleFunc("POST /api/blackjack/hit", s.handleHit)
	mux.HandleFunc("POST /api/blackjack/stand", s.handleStand)
	mux.HandleFunc("POST /api/blackjack/double", s.handleDouble)
	// All three verbs dispatch through the registry; each game documents
	// its own (e.g. /api/slots/spin, /api/dice/roll).
	mux.HandleFunc("POST /api/{game}/play", s.handlePlay)
	mux.HandleFunc("POST /api/{game}/spin", s.handlePlay)
	mux.HandleFunc("POST /api/{game}/roll", s.handlePlay)
	mux.HandleFunc("GET /api/games", s.handleGames)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts serving and blocks until the listener closes.
func (s *Server) Run() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
