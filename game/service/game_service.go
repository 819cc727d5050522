package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
)

// GameService defines every operation the transports perform on the shared board.
// It satisfies session.Game so line-protocol sessions can drive it directly.
type GameService interface {
	session.Game

	// Players
	Join(ctx context.Context, transport, remote string) (id string, players int, err error)
	Leave(ctx context.Context, id string) error
	ListPlayers(ctx context.Context) []session.Player
	IdlePlayers(ctx context.Context, maxAge time.Duration) []session.Player

	// Checked operations for callers without a protocol session
	Play(ctx context.Context, kind session.Kind, x, y int) (*PlayResult, error)
	Cell(ctx context.Context, x, y int) (engine.CellView, error)

	// Board state
	Board(ctx context.Context) *BoardView
	Status(ctx context.Context) *Status
	Debug() bool
}

// PlayerRegistry defines live player bookkeeping
type PlayerRegistry interface {
	Register(p session.Player) (string, int, error)
	Unregister(id string) error
	Touch(id string) error
	List() []session.Player
	Idle(maxAge time.Duration) []session.Player
	Count() int
}
