package engine

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var boardHeader = regexp.MustCompile(`^([0-9]+) ([0-9]+)$`)

// maxBoardLine bounds a single board row, enough for roughly eight million columns
const maxBoardLine = 16 << 20

// ParseBoard reads a board file:
//
//	X Y
//	v v ... v   (Y lines of X values, each 0 or 1)
//
// Lines end in "\n", "\r\n" or "\r". The final newline is optional and
// trailing empty lines are ignored. Any other deviation is ErrMalformedBoard.
func ParseBoard(r io.Reader, opts ...Option) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBoardLine)
	scanner.Split(scanBoardLines)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read board header: %w", err)
		}
		return nil, fmt.Errorf("%w: line 1: missing header", ErrMalformedBoard)
	}
	columns, rows, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	bombs := make([][]bool, 0, min(rows, 1024))
	lineNo := 1
	for len(bombs) < rows && scanner.Scan() {
		lineNo++
		row, err := parseRow(scanner.Text(), columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedBoard, lineNo, err)
		}
		bombs = append(bombs, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	if len(bombs) < rows {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedBoard, rows, len(bombs))
	}

	for scanner.Scan() {
		lineNo++
		if scanner.Text() != "" {
			return nil, fmt.Errorf("%w: line %d: unexpected content after last row", ErrMalformedBoard, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}

	return NewGridFromBombs(bombs, opts...)
}

// LoadBoardFile opens path and parses it with ParseBoard
func LoadBoardFile(path string, opts ...Option) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open board file: %w", err)
	}
	defer f.Close()

	g, err := ParseBoard(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// NewRandomGrid places a bomb in each cell with probability 1/BombOdds
func NewRandomGrid(columns, rows int, rng *rand.Rand, opts ...Option) (*Grid, error) {
	g, err := NewGrid(columns, rows, opts...)
	if err != nil {
		return nil, err
	}
	for y := range g.cells {
		for x := range g.cells[y] {
			g.cells[y][x].hasBomb = rng.Intn(BombOdds) == 0
		}
	}
	return g, nil
}

func parseHeader(line string) (int, int, error) {
	m := boardHeader.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: line 1: expected \"X Y\", got %q", ErrMalformedBoard, line)
	}
	columns, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: line 1: columns: %v", ErrMalformedBoard, err)
	}
	rows, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: line 1: rows: %v", ErrMalformedBoard, err)
	}
	if columns == 0 || rows == 0 {
		return 0, 0, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, columns, rows)
	}
	return columns, rows, nil
}

func parseRow(line string, columns int) ([]bool, error) {
	vals := strings.Split(line, " ")
	if len(vals) != columns {
		return nil, fmt.Errorf("expected %d values, got %d", columns, len(vals))
	}
	row := make([]bool, columns)
	for x, v := range vals {
		switch v {
		case "0":
		case "1":
			row[x] = true
		default:
			return nil, fmt.Errorf("value %d: expected 0 or 1, got %q", x, v)
		}
	}
	return row, nil
}

// scanBoardLines is a bufio.SplitFunc accepting "\n", "\r\n" and a lone "\r" as line ends
func scanBoardLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
