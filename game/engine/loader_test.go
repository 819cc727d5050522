package engine

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestParseBoard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		columns  int
		rows     int
		expected string
	}{
		{"unix newlines", "2 2\n0 1\n0 0\n", 2, 2, "- -\r\n- -"},
		{"windows newlines", "2 2\r\n0 1\r\n0 0\r\n", 2, 2, "- -\r\n- -"},
		{"old mac newlines", "2 2\r0 1\r0 0\r", 2, 2, "- -\r\n- -"},
		{"missing final newline", "3 1\n1 0 1", 3, 1, "- - -"},
		{"trailing empty lines", "1 1\n0\n\n\r\n", 1, 1, "-"},
		{"mixed newlines", "2 3\n0 0\r\n1 1\r0 1\n", 2, 3, "- -\r\n- -\r\n- -"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseBoard(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if g.Columns() != tt.columns || g.Rows() != tt.rows {
				t.Errorf("Expected %dx%d, got %dx%d", tt.columns, tt.rows, g.Columns(), g.Rows())
			}
			if g.String() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, g.String())
			}
		})
	}
}

func TestParseBoardBombs(t *testing.T) {
	g, err := ParseBoard(strings.NewReader("3 2\n1 0 0\n0 0 1\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := mustGrid(t, "*..", "..*")
	if !g.Equal(expected) {
		t.Error("Expected parsed bombs to match layout")
	}
	if s := g.Stats(); s.Bombs != 2 {
		t.Errorf("Expected 2 bombs, got %d", s.Bombs)
	}
}

func TestParseBoardRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"empty input", "", ErrMalformedBoard},
		{"header missing rows", "3\n0 0 0\n", ErrMalformedBoard},
		{"header extra space", "3  1\n0 0 0\n", ErrMalformedBoard},
		{"header negative", "-3 1\n0 0 0\n", ErrMalformedBoard},
		{"header overflow", "99999999999999999999999 1\n0\n", ErrMalformedBoard},
		{"zero columns", "0 1\n\n", ErrInvalidDimensions},
		{"zero rows", "1 0\n", ErrInvalidDimensions},
		{"too few rows", "2 3\n0 0\n0 0\n", ErrMalformedBoard},
		{"too many values", "2 1\n0 0 0\n", ErrMalformedBoard},
		{"too few values", "3 1\n0 0\n", ErrMalformedBoard},
		{"bad value", "2 1\n0 2\n", ErrMalformedBoard},
		{"double space", "2 1\n0  1\n", ErrMalformedBoard},
		{"trailing space", "2 1\n0 1 \n", ErrMalformedBoard},
		{"tab separator", "2 1\n0\t1\n", ErrMalformedBoard},
		{"empty row inside board", "1 2\n0\n\n1\n", ErrMalformedBoard},
		{"extra row", "1 1\n0\n1\n", ErrMalformedBoard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBoard(strings.NewReader(tt.input))
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestParseBoardReportsLine(t *testing.T) {
	_, err := ParseBoard(strings.NewReader("2 3\n0 0\n0 x\n0 0\n"))
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected error to name line 3, got %v", err)
	}
}

func TestLoadBoardFileMissing(t *testing.T) {
	if _, err := LoadBoardFile("testdata/does_not_exist.txt"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestNewRandomGrid(t *testing.T) {
	g1, err := NewRandomGrid(30, 30, rand.New(rand.NewSource(47)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	g2, _ := NewRandomGrid(30, 30, rand.New(rand.NewSource(47)))
	if !g1.Equal(g2) {
		t.Error("Expected equal seeds to produce equal grids")
	}

	// 900 cells at 1/3 should land well inside this band
	bombs := g1.Stats().Bombs
	if bombs < 220 || bombs > 380 {
		t.Errorf("Expected roughly 300 bombs, got %d", bombs)
	}

	if _, err := NewRandomGrid(0, 3, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
}

func TestScanBoardLinesSplitCarriageReturn(t *testing.T) {
	// "\r" at the end of a non-final chunk must wait for more data
	advance, token, err := scanBoardLines([]byte("0 1\r"), false)
	if err != nil || advance != 0 || token != nil {
		t.Errorf("Expected request for more data, got %d %q %v", advance, token, err)
	}
	advance, token, _ = scanBoardLines([]byte("0 1\r"), true)
	if advance != 4 || string(token) != "0 1" {
		t.Errorf("Expected full line at EOF, got %d %q", advance, token)
	}
}
