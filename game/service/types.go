package service

import (
	"errors"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

var (
	ErrOutOfBounds        = errors.New("coordinates out of bounds")
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// PlayResult contains the outcome of a checked dig, flag or deflag
type PlayResult struct {
	Command   string `json:"command"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Detonated bool   `json:"detonated"`
	Board     string `json:"board"`
	Message   string `json:"message"`
}

// BoardView is the serialized board with its dimensions
type BoardView struct {
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Board   string `json:"board"`
}

// Status summarizes the server for the API and MCP
type Status struct {
	Players int          `json:"players"`
	Columns int          `json:"columns"`
	Rows    int          `json:"rows"`
	Debug   bool         `json:"debug"`
	Hash    uint64       `json:"hash"`
	Stats   engine.Stats `json:"stats"`
}
