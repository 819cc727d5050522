package engine

import "errors"

// CellState represents the visibility state of a single grid cell
type CellState int

const (
	Untouched CellState = iota
	Flagged
	Cleared
)

// String returns a readable name for the state
func (s CellState) String() string {
	switch s {
	case Untouched:
		return "untouched"
	case Flagged:
		return "flagged"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

const (
	// BombOdds is the denominator of the per-cell bomb probability for random grids (1 in 3)
	BombOdds = 3

	// DefaultColumns and DefaultRows size the random grid when no size is configured
	DefaultColumns = 10
	DefaultRows    = 10

	// RowSeparator terminates every serialized row except the last one
	RowSeparator = "\r\n"
)

var (
	ErrOutOfBounds       = errors.New("coordinates out of bounds")
	ErrInvalidState      = errors.New("cell is not cleared")
	ErrInvalidDimensions = errors.New("columns and rows must be greater than zero")
	ErrMalformedBoard    = errors.New("malformed board file")
	ErrInvariantViolated = errors.New("grid invariant violated")
)

// cell is one grid position. Cells are owned by a Grid and never handed out by reference.
type cell struct {
	state         CellState
	hasBomb       bool
	adjacentBombs int // valid only when state == Cleared
}

// glyph returns the one-character serialization of the cell
func (c cell) glyph() byte {
	switch c.state {
	case Untouched:
		return '-'
	case Flagged:
		return 'F'
	}
	if c.adjacentBombs == 0 {
		return ' '
	}
	return byte('0' + c.adjacentBombs)
}

// CellView is a read-only copy of a cell's visible state
type CellView struct {
	X             int       `json:"x"`
	Y             int       `json:"y"`
	State         CellState `json:"state"`
	AdjacentBombs int       `json:"adjacent_bombs,omitempty"`
}

// Stats summarizes a grid at one instant
type Stats struct {
	Columns   int `json:"columns"`
	Rows      int `json:"rows"`
	Bombs     int `json:"bombs"`
	Untouched int `json:"untouched"`
	Flagged   int `json:"flagged"`
	Cleared   int `json:"cleared"`
}

// Position is an x,y coordinate pair
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}
