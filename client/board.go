package client

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

// Cell glyphs as rendered by the server
const (
	Untouched byte = '-'
	Flagged   byte = 'F'
	Empty     byte = ' '
)

// Board is a parsed board reply. Cells are indexed [y][x].
type Board struct {
	Columns int
	Rows    int
	Cells   [][]byte
}

// ParseBoard parses one rendered line per row
func ParseBoard(lines []string, columns int) (*Board, error) {
	b := &Board{Columns: columns, Rows: len(lines), Cells: make([][]byte, len(lines))}
	for y, line := range lines {
		if len(line) != 2*columns-1 {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrUnexpectedResponse, y, len(line), 2*columns-1)
		}
		row := make([]byte, columns)
		for x := 0; x < columns; x++ {
			ch := line[2*x]
			if !isGlyph(ch) {
				return nil, fmt.Errorf("%w: row %d has glyph %q", ErrUnexpectedResponse, y, ch)
			}
			if x > 0 && line[2*x-1] != ' ' {
				return nil, fmt.Errorf("%w: row %d is not space separated", ErrUnexpectedResponse, y)
			}
			row[x] = ch
		}
		b.Cells[y] = row
	}
	return b, nil
}

func isGlyph(ch byte) bool {
	return ch == Untouched || ch == Flagged || ch == Empty || (ch >= '1' && ch <= '8')
}

// At returns the glyph at (x, y)
func (b *Board) At(x, y int) byte {
	return b.Cells[y][x]
}

// Count returns the revealed neighbor count at (x, y), or -1 when the cell is
// not cleared
func (b *Board) Count(x, y int) int {
	switch ch := b.Cells[y][x]; {
	case ch == Empty:
		return 0
	case ch >= '1' && ch <= '8':
		return int(ch - '0')
	default:
		return -1
	}
}

// Untouched lists every untouched position in row-major order
func (b *Board) Untouched() []engine.Position {
	var out []engine.Position
	for y, row := range b.Cells {
		for x, ch := range row {
			if ch == Untouched {
				out = append(out, engine.Position{X: x, Y: y})
			}
		}
	}
	return out
}

func (b *Board) String() string {
	lines := make([]string, b.Rows)
	for y, row := range b.Cells {
		parts := make([]string, len(row))
		for x, ch := range row {
			parts[x] = string(ch)
		}
		lines[y] = strings.Join(parts, " ")
	}
	return strings.Join(lines, "\r\n")
}
