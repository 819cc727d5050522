package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
	"github.com/wricardo/mcp-training/minesweeper/internal/metrics"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	grid    *engine.Grid
	players PlayerRegistry
	debug   bool
	log     *zap.Logger
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithDebug keeps sessions open after a detonation
func WithDebug(debug bool) Option {
	return func(s *gameServiceImpl) {
		s.debug = debug
	}
}

// WithLogger sets the service logger
func WithLogger(log *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		s.log = log
	}
}

// NewGameService creates a new game service over one shared grid
func NewGameService(grid *engine.Grid, players PlayerRegistry, opts ...Option) GameService {
	s := &gameServiceImpl{
		grid:    grid,
		players: players,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join registers a new connection and returns the live count including it
func (s *gameServiceImpl) Join(ctx context.Context, transport, remote string) (string, int, error) {
	id, count, err := s.players.Register(session.Player{Transport: transport, Remote: remote})
	if err != nil {
		return "", 0, fmt.Errorf("failed to register player: %w", err)
	}

	metrics.Connections.WithLabelValues(transport).Inc()
	metrics.Players.Set(float64(count))
	s.log.Info("player joined",
		zap.String("session_id", id),
		zap.String("transport", transport),
		zap.String("remote", remote),
		zap.Int("players", count))
	return id, count, nil
}

// Leave unregisters a connection
func (s *gameServiceImpl) Leave(ctx context.Context, id string) error {
	if err := s.players.Unregister(id); err != nil {
		return fmt.Errorf("failed to unregister player %s: %w", id, err)
	}

	count := s.players.Count()
	metrics.Players.Set(float64(count))
	s.log.Info("player left", zap.String("session_id", id), zap.Int("players", count))
	return nil
}

func (s *gameServiceImpl) ListPlayers(ctx context.Context) []session.Player {
	return s.players.List()
}

func (s *gameServiceImpl) IdlePlayers(ctx context.Context, maxAge time.Duration) []session.Player {
	return s.players.Idle(maxAge)
}

func (s *gameServiceImpl) Dimensions() (int, int) {
	return s.grid.Columns(), s.grid.Rows()
}

func (s *gameServiceImpl) Look() string {
	return s.grid.String()
}

func (s *gameServiceImpl) Dig(x, y int) (bool, string) {
	detonated, board := s.grid.DigAndRender(x, y)
	if detonated {
		metrics.Detonations.Inc()
	}
	return detonated, board
}

func (s *gameServiceImpl) Flag(x, y int) string {
	return s.grid.FlagAndRender(x, y)
}

func (s *gameServiceImpl) Deflag(x, y int) string {
	return s.grid.DeflagAndRender(x, y)
}

// CommandProcessed counts a command handled by a protocol session
func (s *gameServiceImpl) CommandProcessed(sessionID string, kind session.Kind) {
	metrics.Commands.WithLabelValues(string(kind)).Inc()
	if err := s.players.Touch(sessionID); err != nil {
		s.log.Debug("command from unregistered session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Play runs a dig, flag or deflag after validating the coordinates
func (s *gameServiceImpl) Play(ctx context.Context, kind session.Kind, x, y int) (*PlayResult, error) {
	if !s.grid.Contains(x, y) {
		return nil, s.outOfBounds(x, y)
	}

	result := &PlayResult{Command: string(kind), X: x, Y: y}
	switch kind {
	case session.Dig:
		result.Detonated, result.Board = s.Dig(x, y)
	case session.Flag:
		result.Board = s.Flag(x, y)
	case session.Deflag:
		result.Board = s.Deflag(x, y)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCommand, kind)
	}
	metrics.Commands.WithLabelValues(string(kind)).Inc()

	if result.Detonated {
		result.Message = session.BoomMessage
		s.log.Info("bomb detonated", zap.Int("x", x), zap.Int("y", y))
	}
	return result, nil
}

// Cell describes one cell without revealing bombs
func (s *gameServiceImpl) Cell(ctx context.Context, x, y int) (engine.CellView, error) {
	if !s.grid.Contains(x, y) {
		return engine.CellView{}, s.outOfBounds(x, y)
	}
	return s.grid.CellAt(x, y), nil
}

func (s *gameServiceImpl) Board(ctx context.Context) *BoardView {
	return &BoardView{
		Columns: s.grid.Columns(),
		Rows:    s.grid.Rows(),
		Board:   s.grid.String(),
	}
}

func (s *gameServiceImpl) Status(ctx context.Context) *Status {
	return &Status{
		Players: s.players.Count(),
		Columns: s.grid.Columns(),
		Rows:    s.grid.Rows(),
		Debug:   s.debug,
		Hash:    s.grid.Hash(),
		Stats:   s.grid.Stats(),
	}
}

func (s *gameServiceImpl) Debug() bool {
	return s.debug
}

func (s *gameServiceImpl) outOfBounds(x, y int) error {
	return fmt.Errorf("%w: (%d,%d) is outside the %dx%d board", ErrOutOfBounds, x, y, s.grid.Columns(), s.grid.Rows())
}
