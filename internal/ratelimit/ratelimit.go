package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter admits or refuses an event for a key, typically a remote IP
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Noop admits everything
type Noop struct{}

func (Noop) Allow(context.Context, string) bool { return true }

type window struct {
	start time.Time
	count int
}

// Memory is a fixed-window limiter kept in process memory
type Memory struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

// NewMemory admits at most max events per key in each window
func NewMemory(max int, win time.Duration) *Memory {
	return &Memory{
		max:     max,
		window:  win,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

func (m *Memory) Allow(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.clients[key]
	if !ok || now.Sub(w.start) > m.window {
		m.clients[key] = &window{start: now, count: 1}
		m.sweep(now)
		return true
	}

	w.count++
	return w.count <= m.max
}

// sweep drops expired windows so the map does not grow with every address ever seen
func (m *Memory) sweep(now time.Time) {
	if len(m.clients) < 1024 {
		return
	}
	for key, w := range m.clients {
		if now.Sub(w.start) > m.window {
			delete(m.clients, key)
		}
	}
}

// Redis is a fixed-window limiter using INCR/EXPIRE, shared by every server
// pointed at the same Redis. It fails open on Redis errors.
type Redis struct {
	client *redis.Client
	max    int
	window time.Duration
	log    *zap.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping
func NewRedis(ctx context.Context, addr, password string, db, max int, win time.Duration, log *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return newRedis(client, max, win, log), nil
}

func newRedis(client *redis.Client, max int, win time.Duration, log *zap.Logger) *Redis {
	return &Redis{client: client, max: max, window: win, log: log}
}

func (r *Redis) key(ident string) string {
	return "minesweeper:conn_rl:" + strconv.FormatInt(int64(r.window.Seconds()), 10) + ":" + ident
}

// Allow counts the connection and reads the window TTL in one round trip. A
// key without a TTL gets one here, whichever caller created it, so a failed
// EXPIRE can never leave an address refused forever.
func (r *Redis) Allow(ctx context.Context, ident string) bool {
	key := r.key(ident)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		r.log.Warn("rate limiter unavailable, admitting connection", zap.String("key", key), zap.Error(err))
		return true
	}

	if ttl.Val() < 0 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			r.log.Warn("rate limiter window has no expiry, admitting connection", zap.String("key", key), zap.Error(err))
			return true
		}
	}
	return incr.Val() <= int64(r.max)
}

// Close releases the Redis connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
