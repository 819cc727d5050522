package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/internal/metrics"
)

// Server represents the HTTP API server
type Server struct {
	service service.GameService
	ws      http.Handler
	mcp     http.Handler
	log     *zap.Logger
	router  *mux.Router
}

// Option configures a Server
type Option func(*Server)

// WithWebSocket mounts the WebSocket play handler at /ws
func WithWebSocket(h http.Handler) Option {
	return func(s *Server) {
		s.ws = h
	}
}

// WithMCP mounts the MCP message handler at /mcp
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// WithLogger sets the request logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		log:     zap.NewNop(),
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/board", s.handleBoard).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	if s.ws != nil {
		s.router.Handle("/ws", s.ws)
	}
	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Board(r.Context()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Status(r.Context()))
}

// handleListSessions lists connected players. With ?idle=5m only players
// silent for at least that long are returned.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	players := s.service.ListPlayers(r.Context())

	if idle := r.URL.Query().Get("idle"); idle != "" {
		maxAge, err := time.ParseDuration(idle)
		if err != nil || maxAge < 0 {
			respondError(w, http.StatusBadRequest, "idle must be a non-negative duration such as 30s or 5m")
			return
		}
		players = s.service.IdlePlayers(r.Context(), maxAge)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(players),
		"sessions": players,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
