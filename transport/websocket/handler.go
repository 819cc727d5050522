package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
	"github.com/wricardo/mcp-training/minesweeper/internal/metrics"
	"github.com/wricardo/mcp-training/minesweeper/internal/ratelimit"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests and runs one protocol session per socket
type Handler struct {
	svc     service.GameService
	limiter ratelimit.Limiter
	log     *zap.Logger

	// sessions outlive the request context once the connection is hijacked
	sessions context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Handler
type Option func(*Handler)

// WithLimiter sets the admission check applied before the upgrade
func WithLimiter(l ratelimit.Limiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// WithLogger sets the handler logger
func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

// NewHandler creates a WebSocket handler for svc
func NewHandler(svc service.GameService, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		limiter: ratelimit.Noop{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sessions, h.cancel = context.WithCancel(context.Background())
	return h
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(r.Context(), remoteHost(r)) {
		metrics.ConnectionsRefused.Inc()
		h.log.Warn("websocket refused by rate limiter", zap.String("remote", r.RemoteAddr))
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	if !h.startSession() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.wg.Done()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn := NewConn(ws)

	id, players, err := h.svc.Join(h.sessions, session.TransportWebSocket, ws.RemoteAddr().String())
	if err != nil {
		h.log.Error("failed to register websocket player", zap.Error(err))
		conn.Close()
		return
	}
	defer func() {
		if err := h.svc.Leave(context.Background(), id); err != nil {
			h.log.Warn("failed to unregister websocket player", zap.String("session_id", id), zap.Error(err))
		}
	}()

	sess := session.New(id, conn, h.svc, session.Options{
		Debug:   h.svc.Debug(),
		Players: players,
		Logger:  h.log,
	})
	if err := sess.Run(h.sessions); err != nil {
		h.log.Warn("websocket session ended with error", zap.String("session_id", id), zap.Error(err))
	}
}

// Shutdown ends every live WebSocket session and waits for them until ctx
// expires
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startSession reserves a slot in the wait group unless Shutdown has begun
func (h *Handler) startSession() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.wg.Add(1)
	return true
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
