package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
	"github.com/wricardo/mcp-training/minesweeper/internal/metrics"
	"github.com/wricardo/mcp-training/minesweeper/internal/ratelimit"
)

// RefusalMessage is the only line a rate-limited client receives
const RefusalMessage = "Too many connections from your address. Try again later."

// ErrServerClosed is returned by Serve after Shutdown
var ErrServerClosed = errors.New("tcp: server closed")

const (
	refusalWriteTimeout = 5 * time.Second

	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Server accepts line-protocol connections and runs one session per connection
// against the shared game service
type Server struct {
	svc     service.GameService
	limiter ratelimit.Limiter
	log     *zap.Logger

	// sessions is cancelled by Shutdown to end every live session
	sessions context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	closed    bool
	wg        sync.WaitGroup
}

// Option configures a Server
type Option func(*Server)

// WithLimiter sets the admission check applied to every new connection
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithLogger sets the server logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer creates a server for svc
func NewServer(svc service.GameService, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		limiter:   ratelimit.Noop{},
		log:       zap.NewNop(),
		listeners: make(map[net.Listener]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions, s.cancel = context.WithCancel(context.Background())
	return s
}

// Serve accepts connections on ln until the listener fails. It may run for
// several listeners at once. A listener error after ctx is cancelled or the
// server is shut down returns nil; any other error is returned.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.track(ln) {
		ln.Close()
		return ErrServerClosed
	}
	defer s.untrack(ln)
	defer ln.Close()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.log.Info("accepting connections", zap.String("addr", ln.Addr().String()))
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || s.isClosed() {
				return nil
			}
			if isTemporary(err) {
				delay = nextAcceptDelay(delay)
				s.log.Warn("accept failed, retrying", zap.Error(err), zap.Duration("retry_in", delay))
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil
				}
				continue
			}
			return fmt.Errorf("accept on %s: %w", ln.Addr(), err)
		}
		delay = 0

		if !s.startSession() {
			conn.Close()
			return nil
		}
		go s.handle(conn)
	}
}

// Shutdown stops accepting, ends every live session and waits for their
// goroutines until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for ln := range s.listeners {
		ln.Close()
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	remote := conn.RemoteAddr().String()

	if !s.limiter.Allow(s.sessions, hostOf(remote)) {
		metrics.ConnectionsRefused.Inc()
		s.log.Warn("connection refused by rate limiter", zap.String("remote", remote))
		conn.SetWriteDeadline(time.Now().Add(refusalWriteTimeout))
		conn.Write([]byte(RefusalMessage + session.LineTerminator))
		conn.Close()
		return
	}

	id, players, err := s.svc.Join(s.sessions, session.TransportTCP, remote)
	if err != nil {
		s.log.Error("failed to register connection", zap.String("remote", remote), zap.Error(err))
		conn.Close()
		return
	}
	defer func() {
		if err := s.svc.Leave(context.Background(), id); err != nil {
			s.log.Warn("failed to unregister connection", zap.String("session_id", id), zap.Error(err))
		}
	}()

	sess := session.New(id, session.NewStreamConn(conn), s.svc, session.Options{
		Debug:   s.svc.Debug(),
		Players: players,
		Logger:  s.log,
	})
	if err := sess.Run(s.sessions); err != nil {
		s.log.Warn("session ended with error", zap.String("session_id", id), zap.Error(err))
	}
}

func (s *Server) track(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.listeners[ln] = struct{}{}
	return true
}

// startSession reserves a slot in the wait group unless Shutdown has begun
func (s *Server) startSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, ln)
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// hostOf strips the port so that limits apply per address
func hostOf(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}

// isTemporary reports accept errors worth retrying, such as running out of
// file descriptors
func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}

func nextAcceptDelay(delay time.Duration) time.Duration {
	if delay == 0 {
		return minAcceptDelay
	}
	if delay *= 2; delay > maxAcceptDelay {
		return maxAcceptDelay
	}
	return delay
}
