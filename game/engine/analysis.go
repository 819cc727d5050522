package engine

// Analysis describes how hard a board is to clear from its current bombs
type Analysis struct {
	// Openings is the number of connected zero regions among the safe cells
	Openings int `json:"openings"`

	// Difficulty is the minimum number of digs that clears every safe cell
	// (the 3BV measure): one per opening plus one per safe cell that no
	// opening reveals
	Difficulty int `json:"difficulty"`

	// Density is bombs divided by cells
	Density float64 `json:"density"`
}

// Analyze measures the board's current bomb layout. It ignores cell states.
func (g *Grid) Analyze() Analysis {
	g.mu.Lock()
	defer g.mu.Unlock()

	counts := make([][]int, g.rows)
	bombs := 0
	for y := range counts {
		counts[y] = make([]int, g.columns)
		for x := range counts[y] {
			counts[y][x] = g.countBombs(x, y)
			if g.cells[y][x].hasBomb {
				bombs++
			}
		}
	}

	revealed := make([][]bool, g.rows)
	for y := range revealed {
		revealed[y] = make([]bool, g.columns)
	}

	var a Analysis
	var stack []Position
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.columns; x++ {
			if revealed[y][x] || g.cells[y][x].hasBomb || counts[y][x] != 0 {
				continue
			}
			a.Openings++
			revealed[y][x] = true
			stack = append(stack[:0], Position{X: x, Y: y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				g.eachNeighbor(p.X, p.Y, func(nx, ny int) {
					if revealed[ny][nx] {
						return
					}
					revealed[ny][nx] = true
					if counts[ny][nx] == 0 {
						stack = append(stack, Position{X: nx, Y: ny})
					}
				})
			}
		}
	}

	a.Difficulty = a.Openings
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.columns; x++ {
			if !revealed[y][x] && !g.cells[y][x].hasBomb {
				a.Difficulty++
			}
		}
	}
	a.Density = float64(bombs) / float64(g.columns*g.rows)
	return a
}
