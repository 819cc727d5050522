// Package engine implements the shared Minesweeper grid.
//
// A Grid is a fixed rectangle of cells. Each cell is Untouched, Flagged or
// Cleared, may hold a bomb, and caches the number of bombs among its up to
// eight neighbors once it has been cleared. Clearing a cell always removes
// its bomb, even when the dig detonates it, so a cleared cell never holds one.
//
// Core Types:
//
// Grid owns every cell behind one mutex. Each exported method acquires the
// lock exactly once, which keeps a dig and its cascade atomic with respect to
// other players. The *AndRender methods mutate and serialize in the same
// critical section so a client always sees the board its own command produced.
//
// Boards are built with NewRandomGrid, NewGridFromBombs or ParseBoard. The
// board file format is a "X Y" header followed by Y rows of X space-separated
// 0/1 values.
//
// Usage:
//
//	grid, err := engine.LoadBoardFile("boards/board_1", engine.WithInvariantChecks(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	boom, board := grid.DigAndRender(1, 0)
//	if boom {
//		fmt.Println("BOOM!")
//	}
//	fmt.Println(board)
//
// Serialization:
//
// String renders one row per line joined by "\r\n" with no trailing
// terminator. Cells are separated by single spaces and drawn as '-'
// (untouched), 'F' (flagged), ' ' (cleared with no adjacent bombs) or the
// digit 1-8.
package engine
