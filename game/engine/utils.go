package engine

// neighborOffsets lists the eight surrounding positions in row-major order
var neighborOffsets = [8]Position{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// eachNeighbor calls fn for every on-grid neighbor of (x, y)
func (g *Grid) eachNeighbor(x, y int, fn func(nx, ny int)) {
	for _, off := range neighborOffsets {
		nx, ny := x+off.X, y+off.Y
		if g.Contains(nx, ny) {
			fn(nx, ny)
		}
	}
}

// countBombs counts the bombs currently held by the neighbors of (x, y)
func (g *Grid) countBombs(x, y int) int {
	count := 0
	g.eachNeighbor(x, y, func(nx, ny int) {
		if g.cells[ny][nx].hasBomb {
			count++
		}
	})
	return count
}

// Neighbors returns the on-grid positions surrounding (x, y)
func Neighbors(columns, rows, x, y int) []Position {
	var out []Position
	for _, off := range neighborOffsets {
		nx, ny := x+off.X, y+off.Y
		if nx >= 0 && nx < columns && ny >= 0 && ny < rows {
			out = append(out, Position{X: nx, Y: ny})
		}
	}
	return out
}
