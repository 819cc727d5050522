package engine

import (
	"fmt"
	"sync"
)

// Grid is the shared Minesweeper board. A single mutex guards every cell:
// exported methods acquire it exactly once and unexported helpers assume it is held.
type Grid struct {
	mu      sync.Mutex
	columns int
	rows    int
	cells   [][]cell // indexed [y][x]

	checkInvariants bool
}

// Option configures a Grid at construction time
type Option func(*Grid)

// WithInvariantChecks verifies the grid invariants after every mutation and
// panics on violation
func WithInvariantChecks(enabled bool) Option {
	return func(g *Grid) {
		g.checkInvariants = enabled
	}
}

// NewGrid creates a bomb-free grid with every cell untouched
func NewGrid(columns, rows int, opts ...Option) (*Grid, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, columns, rows)
	}

	g := &Grid{
		columns: columns,
		rows:    rows,
		cells:   make([][]cell, rows),
	}
	for y := range g.cells {
		g.cells[y] = make([]cell, columns)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewGridFromBombs creates a grid from a row-major bomb layout, bombs[y][x].
// Every row must have the same non-zero length.
func NewGridFromBombs(bombs [][]bool, opts ...Option) (*Grid, error) {
	if len(bombs) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}

	g, err := NewGrid(len(bombs[0]), len(bombs), opts...)
	if err != nil {
		return nil, err
	}
	for y, row := range bombs {
		if len(row) != g.columns {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidDimensions, y, len(row), g.columns)
		}
		for x, bomb := range row {
			g.cells[y][x].hasBomb = bomb
		}
	}
	return g, nil
}

// Columns returns the grid width. Dimensions never change, so no lock is taken.
func (g *Grid) Columns() int {
	return g.columns
}

// Rows returns the grid height
func (g *Grid) Rows() int {
	return g.rows
}

// Contains reports whether (x, y) lies on the grid
func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.columns && y >= 0 && y < g.rows
}

// IsUntouched reports whether the cell has been neither flagged nor dug
func (g *Grid) IsUntouched(x, y int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.at(x, y).state == Untouched
}

// IsFlagged reports whether the cell is flagged
func (g *Grid) IsFlagged(x, y int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.at(x, y).state == Flagged
}

// IsCleared reports whether the cell has been dug
func (g *Grid) IsCleared(x, y int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.at(x, y).state == Cleared
}

// AdjacentBombCount returns the number of bombs around a cleared cell.
// It fails with ErrInvalidState for a cell that is not cleared.
func (g *Grid) AdjacentBombCount(x, y int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := g.at(x, y)
	if c.state != Cleared {
		return 0, fmt.Errorf("%w: (%d,%d) is %s", ErrInvalidState, x, y, c.state)
	}
	return c.adjacentBombs, nil
}

// Flag marks an untouched cell as flagged; any other cell is left alone
func (g *Grid) Flag(x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flag(x, y)
}

// Deflag returns a flagged cell to untouched; any other cell is left alone
func (g *Grid) Deflag(x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deflag(x, y)
}

// Dig clears an untouched cell and cascades through zero-count regions.
// It returns true iff this call hit a bomb.
func (g *Grid) Dig(x, y int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dig(x, y)
}

// DigAndRender digs and serializes the resulting grid under one lock acquisition
func (g *Grid) DigAndRender(x, y int) (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	detonated := g.dig(x, y)
	return detonated, g.render()
}

// FlagAndRender flags and serializes the resulting grid under one lock acquisition
func (g *Grid) FlagAndRender(x, y int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flag(x, y)
	return g.render()
}

// DeflagAndRender deflags and serializes the resulting grid under one lock acquisition
func (g *Grid) DeflagAndRender(x, y int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deflag(x, y)
	return g.render()
}

// CellAt returns a copy of the visible state of one cell. Bomb presence is never exposed.
func (g *Grid) CellAt(x, y int) CellView {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := g.at(x, y)
	view := CellView{X: x, Y: y, State: c.state}
	if c.state == Cleared {
		view.AdjacentBombs = c.adjacentBombs
	}
	return view
}

// Stats counts cells by state along with the bombs still on the board
func (g *Grid) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Stats{Columns: g.columns, Rows: g.rows}
	for y := range g.cells {
		for x := range g.cells[y] {
			c := &g.cells[y][x]
			if c.hasBomb {
				s.Bombs++
			}
			switch c.state {
			case Untouched:
				s.Untouched++
			case Flagged:
				s.Flagged++
			case Cleared:
				s.Cleared++
			}
		}
	}
	return s
}

// CheckInvariant verifies that no cleared cell holds a bomb and that every
// cleared cell's cached count matches its neighbors
func (g *Grid) CheckInvariant() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkInvariant()
}

// at returns the cell at (x, y), panicking when the coordinates are off the grid
func (g *Grid) at(x, y int) *cell {
	if !g.Contains(x, y) {
		panic(fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrOutOfBounds, x, y, g.columns, g.rows))
	}
	return &g.cells[y][x]
}

func (g *Grid) flag(x, y int) {
	c := g.at(x, y)
	if c.state == Untouched {
		c.state = Flagged
	}
	g.verify()
}

func (g *Grid) deflag(x, y int) {
	c := g.at(x, y)
	if c.state == Flagged {
		c.state = Untouched
	}
	g.verify()
}

// dig runs the clearing algorithm with an explicit stack so that large open
// regions never grow the goroutine stack. A cell is cleared at most once.
func (g *Grid) dig(x, y int) bool {
	if g.at(x, y).state != Untouched {
		return false
	}

	detonated := false
	work := []Position{{X: x, Y: y}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		c := &g.cells[p.Y][p.X]
		if c.state == Cleared {
			continue
		}
		c.state = Cleared
		if c.hasBomb {
			c.hasBomb = false
			detonated = true
			g.recountClearedNeighbors(p.X, p.Y)
		}

		c.adjacentBombs = g.countBombs(p.X, p.Y)
		if c.adjacentBombs > 0 {
			continue
		}
		g.eachNeighbor(p.X, p.Y, func(nx, ny int) {
			if g.cells[ny][nx].state != Cleared {
				work = append(work, Position{X: nx, Y: ny})
			}
		})
	}

	g.verify()
	return detonated
}

// recountClearedNeighbors refreshes cached counts around a bomb that was just removed
func (g *Grid) recountClearedNeighbors(x, y int) {
	g.eachNeighbor(x, y, func(nx, ny int) {
		n := &g.cells[ny][nx]
		if n.state == Cleared {
			n.adjacentBombs = g.countBombs(nx, ny)
		}
	})
}

// verify panics when invariant checking is enabled and the grid is inconsistent
func (g *Grid) verify() {
	if !g.checkInvariants {
		return
	}
	if err := g.checkInvariant(); err != nil {
		panic(err)
	}
}

func (g *Grid) checkInvariant() error {
	for y := range g.cells {
		for x := range g.cells[y] {
			c := &g.cells[y][x]
			if c.state != Cleared {
				continue
			}
			if c.hasBomb {
				return fmt.Errorf("%w: cleared cell (%d,%d) holds a bomb", ErrInvariantViolated, x, y)
			}
			if want := g.countBombs(x, y); c.adjacentBombs != want {
				return fmt.Errorf("%w: cell (%d,%d) caches %d adjacent bombs, has %d",
					ErrInvariantViolated, x, y, c.adjacentBombs, want)
			}
		}
	}
	return nil
}
