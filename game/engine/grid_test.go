package engine

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
)

func mustGrid(t *testing.T, layout ...string) *Grid {
	t.Helper()
	bombs := make([][]bool, len(layout))
	for y, row := range layout {
		bombs[y] = make([]bool, len(row))
		for x, ch := range row {
			bombs[y][x] = ch == '*'
		}
	}
	g, err := NewGridFromBombs(bombs, WithInvariantChecks(true))
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	return g
}

func loadFixture(t *testing.T, name string) *Grid {
	t.Helper()
	g, err := LoadBoardFile("testdata/"+name, WithInvariantChecks(true))
	if err != nil {
		t.Fatalf("Failed to load %s: %v", name, err)
	}
	return g
}

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(3, 5)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	if g.Columns() != 3 {
		t.Errorf("Expected 3 columns, got %d", g.Columns())
	}
	if g.Rows() != 5 {
		t.Errorf("Expected 5 rows, got %d", g.Rows())
	}

	for _, dims := range [][2]int{{1, 0}, {0, 1}, {-1, 4}} {
		if _, err := NewGrid(dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Expected ErrInvalidDimensions for %v, got %v", dims, err)
		}
	}
}

func TestNewGridFromBombsRagged(t *testing.T) {
	_, err := NewGridFromBombs([][]bool{{true, false}, {true}})
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := NewGridFromBombs(nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions for empty layout, got %v", err)
	}
}

func TestFromFile(t *testing.T) {
	g := loadFixture(t, "board_5_4.txt")

	if g.Columns() != 5 || g.Rows() != 4 {
		t.Fatalf("Expected 5x4 grid, got %dx%d", g.Columns(), g.Rows())
	}
	if !g.IsUntouched(0, 0) {
		t.Error("Expected empty cell to start untouched")
	}
	if !g.IsUntouched(1, 0) {
		t.Error("Expected bomb cell to start untouched")
	}

	g.Flag(0, 0)
	g.Flag(2, 0)
	if !g.IsFlagged(0, 0) || !g.IsFlagged(2, 0) {
		t.Error("Expected (0,0) and (2,0) to be flagged")
	}
	if g.IsFlagged(1, 0) || g.IsFlagged(3, 0) {
		t.Error("Expected (1,0) and (3,0) to stay unflagged")
	}

	g.Deflag(2, 0)
	if g.IsFlagged(2, 0) {
		t.Error("Expected (2,0) to be deflagged")
	}

	if g.Dig(4, 2) {
		t.Error("Expected digging an empty cell not to detonate")
	}
	if !g.IsCleared(4, 2) {
		t.Error("Expected (4,2) to be cleared")
	}

	// (0,3) has no adjacent bombs, so the cascade clears the flagged (1,2) too
	g.Flag(1, 2)
	g.Dig(0, 3)
	if !g.IsCleared(1, 2) {
		t.Fatal("Expected cascade to clear flagged neighbor (1,2)")
	}
	count, err := g.AdjacentBombCount(1, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 adjacent bombs, got %d", count)
	}

	if !g.Dig(2, 2) {
		t.Error("Expected digging a bomb to detonate")
	}
	if !g.IsCleared(2, 2) {
		t.Error("Expected detonated cell to be cleared")
	}
	count, _ = g.AdjacentBombCount(1, 2)
	if count != 1 {
		t.Errorf("Expected neighbor count to drop to 1 after detonation, got %d", count)
	}
}

func TestAdjacentBombCountRequiresCleared(t *testing.T) {
	g := mustGrid(t, "*.", "..")

	if _, err := g.AdjacentBombCount(1, 1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for untouched cell, got %v", err)
	}
	g.Flag(1, 1)
	if _, err := g.AdjacentBombCount(1, 1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for flagged cell, got %v", err)
	}
	g.Deflag(1, 1)
	g.Dig(1, 1)
	count, err := g.AdjacentBombCount(1, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1, got %d", count)
	}
}

func TestFlagTransitions(t *testing.T) {
	g := mustGrid(t, "..*")

	g.Flag(0, 0)
	g.Flag(0, 0)
	if !g.IsFlagged(0, 0) {
		t.Error("Expected repeated flag to keep the cell flagged")
	}

	g.Deflag(1, 0)
	if !g.IsUntouched(1, 0) {
		t.Error("Expected deflag on untouched cell to be a no-op")
	}

	g.Dig(1, 0)
	g.Flag(1, 0)
	if !g.IsCleared(1, 0) {
		t.Error("Expected flag on cleared cell to be a no-op")
	}
	g.Deflag(1, 0)
	if !g.IsCleared(1, 0) {
		t.Error("Expected deflag on cleared cell to be a no-op")
	}

	g.Deflag(0, 0)
	if !g.IsUntouched(0, 0) {
		t.Error("Expected deflag to restore untouched")
	}
}

func TestDigFlaggedIsNoop(t *testing.T) {
	g := mustGrid(t, "*.")
	g.Flag(0, 0)
	if g.Dig(0, 0) {
		t.Error("Expected dig on flagged bomb not to detonate")
	}
	if !g.IsFlagged(0, 0) {
		t.Error("Expected flagged cell to stay flagged")
	}
}

func TestDigClearedIsNoop(t *testing.T) {
	g := mustGrid(t, "*..", "...", "..*")
	g.Dig(1, 1)
	before := g.String()
	hash := g.Hash()

	if g.Dig(1, 1) {
		t.Error("Expected second dig not to detonate")
	}
	if g.String() != before {
		t.Errorf("Expected unchanged grid %q, got %q", before, g.String())
	}
	if g.Hash() != hash {
		t.Error("Expected unchanged hash")
	}
}

func TestCascadeClearsZeroRegionAndBorder(t *testing.T) {
	g := mustGrid(t,
		".....",
		".....",
		"...**",
		"...*.",
	)
	g.Flag(0, 3)

	if g.Dig(0, 0) {
		t.Fatal("Expected no detonation")
	}

	expected := "         \r\n    1 2 2\r\n    2 - -\r\n    2 - -"
	if g.String() != expected {
		t.Errorf("Expected\n%q\ngot\n%q", expected, g.String())
	}
	if !g.IsCleared(0, 3) {
		t.Error("Expected cascade to override the flag on (0,3)")
	}
}

func TestDetonationUpdatesClearedNeighbors(t *testing.T) {
	g := loadFixture(t, "board_3_1.txt")

	if g.Dig(1, 0) {
		t.Fatal("Expected no detonation on (1,0)")
	}
	if s := g.String(); s != "- 2 -" {
		t.Errorf("Expected %q, got %q", "- 2 -", s)
	}

	if !g.Dig(0, 0) {
		t.Fatal("Expected detonation on (0,0)")
	}
	if s := g.String(); s != "  1 -" {
		t.Errorf("Expected %q, got %q", "  1 -", s)
	}
	if err := g.CheckInvariant(); err != nil {
		t.Errorf("Unexpected invariant violation: %v", err)
	}
}

func TestDigEightSafeNeighbors(t *testing.T) {
	g := mustGrid(t,
		"*****",
		"*...*",
		"*...*",
		"*...*",
		"*****",
	)

	if g.Dig(2, 2) {
		t.Fatal("Expected no detonation")
	}
	for _, p := range Neighbors(5, 5, 2, 2) {
		if !g.IsCleared(p.X, p.Y) {
			t.Errorf("Expected neighbor (%d,%d) to be cleared", p.X, p.Y)
		}
	}
	if s := g.Stats(); s.Cleared != 9 {
		t.Errorf("Expected 9 cleared cells, got %d", s.Cleared)
	}
}

func TestLargeOpenCascade(t *testing.T) {
	g, err := NewGrid(400, 400)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	g.Dig(0, 0)
	stats := g.Stats()
	if stats.Cleared != 400*400 {
		t.Errorf("Expected every cell cleared, got %d", stats.Cleared)
	}
}

func TestOutOfBoundsPanics(t *testing.T) {
	g := mustGrid(t, "..", "..")

	calls := map[string]func(){
		"dig":     func() { g.Dig(2, 0) },
		"flag":    func() { g.Flag(0, -1) },
		"deflag":  func() { g.Deflag(-1, 0) },
		"cleared": func() { g.IsCleared(0, 2) },
		"cellAt":  func() { g.CellAt(5, 5) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrOutOfBounds) {
					t.Errorf("Expected panic wrapping ErrOutOfBounds, got %v", r)
				}
			}()
			call()
		})
	}

	if g.Contains(2, 0) || g.Contains(0, -1) || !g.Contains(1, 1) {
		t.Error("Contains disagrees with grid bounds")
	}
}

func TestRenderOperations(t *testing.T) {
	g := mustGrid(t, "*.", "..")

	if s := g.FlagAndRender(0, 0); s != "F -\r\n- -" {
		t.Errorf("Expected flagged render, got %q", s)
	}
	if s := g.DeflagAndRender(0, 0); s != "- -\r\n- -" {
		t.Errorf("Expected deflagged render, got %q", s)
	}
	boom, s := g.DigAndRender(1, 1)
	if boom {
		t.Error("Expected no detonation")
	}
	if s != "- -\r\n- 1" {
		t.Errorf("Expected %q, got %q", "- -\r\n- 1", s)
	}
	boom, s = g.DigAndRender(0, 0)
	if !boom {
		t.Error("Expected detonation")
	}
	if s != "   \r\n   " {
		t.Errorf("Expected fully cleared render, got %q", s)
	}
}

func TestCellAtHidesBombs(t *testing.T) {
	g := mustGrid(t, "*.")

	if v := g.CellAt(0, 0); v.State != Untouched || v.AdjacentBombs != 0 {
		t.Errorf("Expected untouched view, got %+v", v)
	}
	g.Dig(1, 0)
	v := g.CellAt(1, 0)
	if v.State != Cleared || v.AdjacentBombs != 1 {
		t.Errorf("Expected cleared view with 1 bomb, got %+v", v)
	}
}

func TestStats(t *testing.T) {
	g := loadFixture(t, "board_5_4.txt")
	g.Flag(0, 0)
	g.Dig(4, 0)

	s := g.Stats()
	if s.Bombs != 5 {
		t.Errorf("Expected 5 bombs, got %d", s.Bombs)
	}
	if s.Flagged != 1 {
		t.Errorf("Expected 1 flagged, got %d", s.Flagged)
	}
	if s.Untouched+s.Flagged+s.Cleared != 20 {
		t.Errorf("Expected counts to cover 20 cells, got %+v", s)
	}
}

func TestRandomOperationsKeepInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(47))
	for round := 0; round < 20; round++ {
		g, err := NewRandomGrid(12, 9, rng, WithInvariantChecks(true))
		if err != nil {
			t.Fatalf("Failed to create grid: %v", err)
		}
		for i := 0; i < 200; i++ {
			x, y := rng.Intn(12), rng.Intn(9)
			switch rng.Intn(3) {
			case 0:
				g.Dig(x, y)
			case 1:
				g.Flag(x, y)
			case 2:
				g.Deflag(x, y)
			}
		}
		if err := g.CheckInvariant(); err != nil {
			t.Fatalf("Round %d: %v", round, err)
		}
	}
}

func TestConcurrentDisjointDigs(t *testing.T) {
	const workers = 8
	rng := rand.New(rand.NewSource(7))
	g, err := NewRandomGrid(80, 80, rng)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(band int) {
			defer wg.Done()
			for y := band * 10; y < band*10+10; y++ {
				for x := 0; x < 80; x++ {
					g.DigAndRender(x, y)
				}
			}
		}(w)
	}
	wg.Wait()

	if err := g.CheckInvariant(); err != nil {
		t.Fatalf("Invariant violated after concurrent digs: %v", err)
	}
	if s := g.Stats(); s.Cleared != 80*80 || s.Bombs != 0 {
		t.Errorf("Expected all cells cleared and no bombs left, got %+v", s)
	}
}

func TestCheckInvariantDetectsCorruption(t *testing.T) {
	g := mustGrid(t, "*..")
	g.Dig(2, 0)

	g.mu.Lock()
	g.cells[0][2].adjacentBombs = 3
	g.mu.Unlock()

	if err := g.CheckInvariant(); !errors.Is(err, ErrInvariantViolated) {
		t.Errorf("Expected ErrInvariantViolated, got %v", err)
	}
}
