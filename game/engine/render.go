package engine

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// String serializes the grid: rows top to bottom joined by "\r\n", cells
// separated by single spaces, no trailing terminator.
func (g *Grid) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.render()
}

func (g *Grid) render() string {
	var b strings.Builder
	b.Grow(g.rows * (2*g.columns + len(RowSeparator)))
	for y, row := range g.cells {
		if y > 0 {
			b.WriteString(RowSeparator)
		}
		for x := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(row[x].glyph())
		}
	}
	return b.String()
}

// Equal reports whether both grids have the same dimensions and every cell
// matches on state and bomb presence. Cached neighbor counts are ignored.
func (g *Grid) Equal(other *Grid) bool {
	if g == other {
		return true
	}
	if other == nil || g.columns != other.columns || g.rows != other.rows {
		return false
	}

	// Copy the other side first so the two locks are never held together.
	theirs := other.snapshot()

	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.structure()) == string(theirs)
}

// Hash returns a 64-bit digest consistent with Equal
func (g *Grid) Hash() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := xxhash.New()
	var dims [16]byte
	binary.LittleEndian.PutUint64(dims[:8], uint64(g.columns))
	binary.LittleEndian.PutUint64(dims[8:], uint64(g.rows))
	_, _ = d.Write(dims[:])
	_, _ = d.Write(g.structure())
	return d.Sum64()
}

func (g *Grid) snapshot() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.structure()
}

// structure encodes (state, hasBomb) for every cell, one byte each
func (g *Grid) structure() []byte {
	out := make([]byte, 0, g.rows*g.columns)
	for y := range g.cells {
		for x := range g.cells[y] {
			c := &g.cells[y][x]
			b := byte(c.state) << 1
			if c.hasBomb {
				b |= 1
			}
			out = append(out, b)
		}
	}
	return out
}
