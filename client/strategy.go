package client

import (
	"math/rand"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

// Move is one dig or flag chosen by a Strategy
type Move struct {
	Kind string // "dig" or "flag"
	X, Y int
}

// Strategy picks moves from the numbers already revealed on a board.
//
// For every cleared cell showing n it looks at the untouched and flagged
// neighbors. When the flags already account for n, every untouched neighbor
// is safe. When flags plus untouched neighbors equal n, every untouched
// neighbor is a bomb. Without a deduction it guesses a random untouched cell.
type Strategy struct {
	rng *rand.Rand
}

// NewStrategy creates a strategy that guesses with rng
func NewStrategy(rng *rand.Rand) *Strategy {
	return &Strategy{rng: rng}
}

// NextMove returns the next move, or false when nothing is left untouched
func (s *Strategy) NextMove(b *Board) (Move, bool) {
	for y := 0; y < b.Rows; y++ {
		for x := 0; x < b.Columns; x++ {
			n := b.Count(x, y)
			if n <= 0 {
				continue
			}

			var untouched []engine.Position
			flagged := 0
			for _, p := range engine.Neighbors(b.Columns, b.Rows, x, y) {
				switch b.At(p.X, p.Y) {
				case Untouched:
					untouched = append(untouched, p)
				case Flagged:
					flagged++
				}
			}
			if len(untouched) == 0 {
				continue
			}
			if flagged == n {
				return Move{Kind: "dig", X: untouched[0].X, Y: untouched[0].Y}, true
			}
			if flagged+len(untouched) == n {
				return Move{Kind: "flag", X: untouched[0].X, Y: untouched[0].Y}, true
			}
		}
	}

	candidates := b.Untouched()
	if len(candidates) == 0 {
		return Move{}, false
	}
	p := candidates[s.rng.Intn(len(candidates))]
	return Move{Kind: "dig", X: p.X, Y: p.Y}, true
}
