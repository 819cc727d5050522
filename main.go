// Command minesweeper starts the multiplayer Minesweeper server.
//
// It supports two modes:
//  1. default: serves the line protocol over TCP, plus an optional HTTP listener
//     exposing the REST API, WebSocket play, an /mcp endpoint and /metrics
//  2. "stdio-mcp": serves MCP over stdio while the TCP server keeps running on
//     the same board
//
// Every flag can also be set through an environment variable or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/minesweeper/api"
	"github.com/wricardo/mcp-training/minesweeper/game/config"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
	"github.com/wricardo/mcp-training/minesweeper/internal/logger"
	"github.com/wricardo/mcp-training/minesweeper/internal/ratelimit"
	"github.com/wricardo/mcp-training/minesweeper/transport/mcp"
	"github.com/wricardo/mcp-training/minesweeper/transport/tcp"
	"github.com/wricardo/mcp-training/minesweeper/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "minesweeper"
)

const (
	shutdownTimeout = 10 * time.Second
	idleReportEvery = time.Minute
	idleAfter       = 10 * time.Minute
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "multiplayer Minesweeper over a TCP line protocol",
		Version: Version,
		Flags:   serverFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, cmd, false)
		},
		Commands: []*cli.Command{
			{
				Name:  "stdio-mcp",
				Usage: "serve MCP tools over stdio alongside the TCP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServer(ctx, cmd, true)
				},
			},
		},
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "port", Value: config.DefaultPort, Usage: "TCP port for the game", Sources: cli.EnvVars("MINESWEEPER_PORT")},
		&cli.StringFlag{Name: "host", Usage: "bind host for the game", Sources: cli.EnvVars("MINESWEEPER_HOST")},
		&cli.BoolFlag{Name: "debug", Usage: "keep players connected after a detonation and check board invariants", Sources: cli.EnvVars("MINESWEEPER_DEBUG")},
		&cli.StringFlag{Name: "size", Usage: "random board size as COLUMNS,ROWS", Sources: cli.EnvVars("MINESWEEPER_SIZE")},
		&cli.StringFlag{Name: "file", Usage: "load the board from `PATH`", Sources: cli.EnvVars("MINESWEEPER_FILE")},
		&cli.Int64Flag{Name: "seed", Usage: "seed for the random board, 0 picks one from the clock", Sources: cli.EnvVars("MINESWEEPER_SEED")},
		&cli.StringFlag{Name: "http-addr", Usage: "address for the HTTP API, WebSocket, MCP and metrics (off when empty)", Sources: cli.EnvVars("MINESWEEPER_HTTP_ADDR")},
		&cli.StringFlag{Name: "log-level", Value: config.DefaultLogLevel, Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		&cli.BoolFlag{Name: "log-json", Usage: "write logs as JSON", Sources: cli.EnvVars("LOG_JSON")},
		&cli.BoolFlag{Name: "ngrok", Usage: "expose the game through a public ngrok TCP tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the connection rate limiter", Sources: cli.EnvVars("REDIS_ADDR")},
		&cli.StringFlag{Name: "redis-password", Usage: "Redis password", Sources: cli.EnvVars("REDIS_PASSWORD")},
		&cli.IntFlag{Name: "redis-db", Usage: "Redis database", Sources: cli.EnvVars("REDIS_DB")},
		&cli.IntFlag{Name: "conn-limit", Usage: "connections admitted per window per address, 0 disables", Sources: cli.EnvVars("CONN_RATE_LIMIT")},
		&cli.DurationFlag{Name: "conn-window", Value: config.DefaultConnWindow, Usage: "rate limit window", Sources: cli.EnvVars("CONN_RATE_WINDOW")},
	}
}

// configFromCommand builds and validates the configuration from parsed flags
func configFromCommand(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	cfg.Port = cmd.Int("port")
	cfg.Host = cmd.String("host")
	cfg.Debug = cmd.Bool("debug")
	cfg.File = cmd.String("file")
	cfg.Seed = cmd.Int64("seed")
	cfg.HTTPAddr = cmd.String("http-addr")
	cfg.LogLevel = cmd.String("log-level")
	cfg.LogJSON = cmd.Bool("log-json")
	cfg.Ngrok = config.NgrokConfig{
		Enabled:   cmd.Bool("ngrok"),
		AuthToken: cmd.String("ngrok-auth"),
	}
	cfg.Redis = config.RedisConfig{
		Addr:     cmd.String("redis-addr"),
		Password: cmd.String("redis-password"),
		DB:       cmd.Int("redis-db"),
	}
	cfg.ConnLimit = cmd.Int("conn-limit")
	cfg.ConnWindow = cmd.Duration("conn-window")

	if s := cmd.String("size"); s != "" {
		size, err := config.ParseSize(s)
		if err != nil {
			return nil, err
		}
		cfg.Size = &size
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(ctx context.Context, cmd *cli.Command, stdio bool) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	log := logger.Init(cfg.LogLevel, cfg.LogJSON)
	defer logger.Sync()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr(), err)
	}

	if !stdio {
		return app.serve(ctx, ln)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- app.serve(ctx, ln) }()

	log.Info("serving MCP over stdio")
	stdioErr := app.mcp.ServeStdio()
	cancel()
	if err := <-served; err != nil {
		return err
	}
	return stdioErr
}

// application holds every component sharing the one board
type application struct {
	cfg     *config.Config
	log     *zap.Logger
	svc     service.GameService
	limiter ratelimit.Limiter
	tcp     *tcp.Server
	ws      *websocket.Handler
	mcp     *mcp.Server
	http    *http.Server
}

// newApplication builds the board and wires the transports to it. Nothing is
// listening until serve is called.
func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, error) {
	grid, err := cfg.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}
	fields := []zap.Field{
		zap.Int("columns", grid.Columns()),
		zap.Int("rows", grid.Rows()),
		zap.Bool("debug", cfg.Debug),
	}
	if cfg.File != "" {
		fields = append(fields, zap.String("file", cfg.File))
	} else {
		fields = append(fields, zap.Int64("seed", cfg.Seed))
	}
	log.Info("board ready", fields...)

	limiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := service.NewGameService(grid, session.NewManager(),
		service.WithDebug(cfg.Debug),
		service.WithLogger(log.Named("service")))

	app := &application{
		cfg:     cfg,
		log:     log,
		svc:     svc,
		limiter: limiter,
		tcp:     tcp.NewServer(svc, tcp.WithLimiter(limiter), tcp.WithLogger(log.Named("tcp"))),
		ws:      websocket.NewHandler(svc, websocket.WithLimiter(limiter), websocket.WithLogger(log.Named("websocket"))),
		mcp:     mcp.NewServer(svc, mcp.WithLogger(log.Named("mcp"))),
	}

	if cfg.HTTPAddr != "" {
		router := api.NewServer(svc,
			api.WithWebSocket(app.ws),
			api.WithMCP(app.mcp),
			api.WithLogger(log.Named("http")))
		app.http = &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	}
	return app, nil
}

// newLimiter picks the connection admission check: none without a limit,
// Redis when an address is configured, otherwise in-process counting
func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, error) {
	switch {
	case cfg.ConnLimit == 0:
		return ratelimit.Noop{}, nil
	case cfg.Redis.Addr != "":
		l, err := ratelimit.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.ConnLimit, cfg.ConnWindow, log.Named("ratelimit"))
		if err != nil {
			return nil, fmt.Errorf("failed to start rate limiter: %w", err)
		}
		log.Info("rate limiting connections with redis",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("limit", cfg.ConnLimit),
			zap.Duration("window", cfg.ConnWindow))
		return l, nil
	default:
		log.Info("rate limiting connections in memory",
			zap.Int("limit", cfg.ConnLimit),
			zap.Duration("window", cfg.ConnWindow))
		return ratelimit.NewMemory(cfg.ConnLimit, cfg.ConnWindow), nil
	}
}

// serve runs the game on ln, plus the tunnel and HTTP listener when
// configured, until ctx is cancelled or a listener fails. Everything is shut
// down before it returns.
func (a *application) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.tcp.Serve(ctx, ln); err != nil && !errors.Is(err, tcp.ErrServerClosed) {
			errs <- fmt.Errorf("tcp server: %w", err)
		}
	}()

	if a.cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.serveNgrok(ctx); err != nil {
				errs <- err
			}
		}()
	}

	if a.http != nil {
		httpLn, err := net.Listen("tcp", a.cfg.HTTPAddr)
		if err != nil {
			cancel()
			a.shutdown()
			wg.Wait()
			return fmt.Errorf("listen on %s: %w", a.cfg.HTTPAddr, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.log.Info("HTTP server listening",
				zap.String("addr", httpLn.Addr().String()),
				zap.String("api", "/api"),
				zap.String("websocket", "/ws"),
				zap.String("mcp", "/mcp"),
				zap.String("metrics", "/metrics"))
			if err := a.http.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		idleReportRoutine(ctx, a.svc, a.log, idleReportEvery, idleAfter)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err = <-errs:
		a.log.Error("server failed, shutting down", zap.Error(err))
	}
	cancel()
	a.shutdown()
	wg.Wait()
	a.log.Info("server stopped")
	return err
}

// serveNgrok opens a public TCP tunnel and serves the game through it
func (a *application) serveNgrok(ctx context.Context) error {
	a.log.Info("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx,
		ngrokConfig.TCPEndpoint(),
		ngrok.WithAuthtoken(a.cfg.Ngrok.AuthToken),
	)
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}
	a.log.Info("ngrok tunnel established", zap.String("url", tun.URL()))

	if err := a.tcp.Serve(ctx, tun); err != nil && !errors.Is(err, tcp.ErrServerClosed) {
		return fmt.Errorf("ngrok tunnel: %w", err)
	}
	a.log.Info("ngrok tunnel closed")
	return nil
}

// shutdown stops the listeners and ends every live session
func (a *application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.http != nil {
		if err := a.http.Shutdown(ctx); err != nil {
			a.log.Warn("HTTP server shutdown error", zap.Error(err))
		}
	}
	if err := a.ws.Shutdown(ctx); err != nil {
		a.log.Warn("websocket shutdown error", zap.Error(err))
	}
	if err := a.tcp.Shutdown(ctx); err != nil {
		a.log.Warn("tcp server shutdown error", zap.Error(err))
	}
}

// close releases resources that outlive serve
func (a *application) close() {
	if c, ok := a.limiter.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("failed to close rate limiter", zap.Error(err))
		}
	}
}

// idleReportRoutine periodically logs players that have not sent a command
// within maxAge
func idleReportRoutine(ctx context.Context, svc service.GameService, log *zap.Logger, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idle := svc.IdlePlayers(ctx, maxAge)
			for _, p := range idle {
				log.Debug("idle player",
					zap.String("session_id", p.ID),
					zap.String("transport", p.Transport),
					zap.Time("last_active_at", p.LastActiveAt))
			}
			if len(idle) > 0 {
				log.Info("idle players", zap.Int("count", len(idle)), zap.Duration("max_age", maxAge))
			}
		}
	}
}
