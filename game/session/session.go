package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrSessionClosed is returned by Run on a session that already ran
var ErrSessionClosed = errors.New("session already closed")

// State is the lifecycle position of a session. It only moves forward.
type State int32

const (
	Connected State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Game is the shared board as seen by a session. Dig, Flag and Deflag return
// the board rendered in the same critical section as the mutation.
type Game interface {
	Dimensions() (columns, rows int)
	Look() string
	Dig(x, y int) (detonated bool, board string)
	Flag(x, y int) string
	Deflag(x, y int) string

	// CommandProcessed is called once for every line a session handles
	CommandProcessed(sessionID string, kind Kind)
}

// Options tune a single session
type Options struct {
	// Debug keeps the connection open after a detonation
	Debug bool

	// Players is the live count, including this player, shown in the welcome
	Players int

	Logger *zap.Logger
}

// Session is the protocol state machine for one connection
type Session struct {
	id    string
	conn  Conn
	game  Game
	debug bool
	n     int
	log   *zap.Logger
	state atomic.Int32
}

// New creates a session in the Connected state
func New(id string, conn Conn, game Game, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		id:    id,
		conn:  conn,
		game:  game,
		debug: opts.Debug,
		n:     opts.Players,
		log:   log.With(zap.String("session_id", id), zap.String("remote", conn.RemoteAddr())),
	}
}

// ID returns the registry ID of the session
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run sends the welcome message and serves commands until the player says
// bye, the peer hangs up, a bomb goes off outside debug mode, or ctx is
// cancelled. The connection is closed on return. Orderly endings return nil.
func (s *Session) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(Connected), int32(Active)) {
		return ErrSessionClosed
	}
	defer s.state.Store(int32(Closed))
	defer s.conn.Close()

	// Unblock ReadLine when the server shuts down.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	columns, rows := s.game.Dimensions()
	if err := s.conn.WriteMessage(WelcomeMessage(s.n, columns, rows)); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	s.log.Debug("session active")

	for {
		line, err := s.conn.ReadLine()
		if errors.Is(err, ErrLineTooLong) {
			s.game.CommandProcessed(s.id, Unknown)
			if err := s.conn.WriteMessage(HelpMessage); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				s.log.Debug("peer disconnected")
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		reply, closing := s.handle(line)
		if reply != "" {
			if err := s.conn.WriteMessage(reply); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
		if closing {
			return nil
		}
	}
}

// handle executes one request line and returns the reply and whether the session ends
func (s *Session) handle(line string) (string, bool) {
	cmd := ParseCommand(line)
	s.game.CommandProcessed(s.id, cmd.Kind)

	switch cmd.Kind {
	case Bye:
		s.log.Debug("player said bye")
		return "", true
	case Look:
		return s.game.Look(), false
	case Help, Unknown:
		return HelpMessage, false
	}

	columns, rows := s.game.Dimensions()
	if !cmd.InBounds(columns, rows) {
		return s.game.Look(), false
	}

	switch cmd.Kind {
	case Dig:
		detonated, board := s.game.Dig(cmd.X, cmd.Y)
		if !detonated {
			return board, false
		}
		s.log.Info("bomb detonated", zap.Int("x", cmd.X), zap.Int("y", cmd.Y), zap.Bool("debug", s.debug))
		return BoomMessage, !s.debug
	case Flag:
		return s.game.Flag(cmd.X, cmd.Y), false
	default:
		return s.game.Deflag(cmd.X, cmd.Y), false
	}
}
