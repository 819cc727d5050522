package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// BoardExt is the conventional board file extension; files without it are accepted too
const BoardExt = ".txt"

// BoardInfo describes one board file without handing out a mutable grid
type BoardInfo struct {
	Name     string          `json:"name"`
	Filename string          `json:"filename"`
	Stats    engine.Stats    `json:"stats"`
	Analysis engine.Analysis `json:"analysis"`
	Hash     uint64          `json:"hash"`
}

// DescribeFile parses one board file and summarizes it
func DescribeFile(path string) (*BoardInfo, error) {
	grid, err := engine.LoadBoardFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return &BoardInfo{
		Name:     strings.TrimSuffix(base, BoardExt),
		Filename: base,
		Stats:    grid.Stats(),
		Analysis: grid.Analyze(),
		Hash:     grid.Hash(),
	}, nil
}

// Manager discovers board files in a directory and caches their descriptions
type Manager struct {
	boardDir string
	boards   map[string]*BoardInfo
	mu       sync.RWMutex
}

// NewManager creates a board manager rooted at boardDir
func NewManager(boardDir string) (*Manager, error) {
	info, err := os.Stat(boardDir)
	if err != nil {
		return nil, fmt.Errorf("board directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("board directory is not a directory: %s", boardDir)
	}

	return &Manager{
		boardDir: boardDir,
		boards:   make(map[string]*BoardInfo),
	}, nil
}

// Path resolves a board name to its file
func (m *Manager) Path(name string) (string, error) {
	for _, candidate := range []string{name + BoardExt, name} {
		path := filepath.Join(m.boardDir, candidate)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBoardNotFound, name)
}

// LoadBoard parses a fresh grid for the named board. Grids are mutable, so
// only the description is cached.
func (m *Manager) LoadBoard(name string, opts ...engine.Option) (*engine.Grid, error) {
	path, err := m.Path(name)
	if err != nil {
		return nil, err
	}
	return engine.LoadBoardFile(path, opts...)
}

// Describe returns the cached description of a board, parsing it on first use
func (m *Manager) Describe(name string) (*BoardInfo, error) {
	m.mu.RLock()
	if info, exists := m.boards[name]; exists {
		m.mu.RUnlock()
		return info, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if info, exists := m.boards[name]; exists {
		return info, nil
	}

	path, err := m.Path(name)
	if err != nil {
		return nil, err
	}
	info, err := DescribeFile(path)
	if err != nil {
		return nil, err
	}
	info.Name = name
	m.boards[name] = info
	return info, nil
}

// ListBoards describes every parseable board in the directory, sorted by name.
// Files that fail to parse are returned in the error map instead.
func (m *Manager) ListBoards() ([]*BoardInfo, map[string]error, error) {
	entries, err := os.ReadDir(m.boardDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read board directory: %w", err)
	}

	var boards []*BoardInfo
	failures := make(map[string]error)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), BoardExt)
		info, err := m.Describe(name)
		if err != nil {
			failures[entry.Name()] = err
			continue
		}
		boards = append(boards, info)
	}

	sort.Slice(boards, func(i, j int) bool { return boards[i].Name < boards[j].Name })
	return boards, failures, nil
}

// RefreshCache drops every cached description
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = make(map[string]*BoardInfo)
}
