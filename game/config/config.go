package config

import (
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

// Defaults for the server surface
const (
	DefaultPort       = 4444
	DefaultLogLevel   = "info"
	DefaultConnWindow = time.Minute
	MaxPort           = 65535
)

// Size is a board size given as "COLUMNS,ROWS"
type Size struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// String formats the size the way ParseSize reads it
func (s Size) String() string {
	return fmt.Sprintf("%d,%d", s.Columns, s.Rows)
}

// ParseSize parses "X,Y" into a Size with positive dimensions
func ParseSize(value string) (Size, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("%w: size must be X,Y, got %q", ErrInvalidConfig, value)
	}
	columns, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Size{}, fmt.Errorf("%w: size columns: %v", ErrInvalidConfig, err)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Size{}, fmt.Errorf("%w: size rows: %v", ErrInvalidConfig, err)
	}
	if columns <= 0 || rows <= 0 {
		return Size{}, fmt.Errorf("%w: size must be positive, got %dx%d", engine.ErrInvalidDimensions, columns, rows)
	}
	return Size{Columns: columns, Rows: rows}, nil
}

// NgrokConfig enables the public TCP tunnel
type NgrokConfig struct {
	Enabled   bool
	AuthToken string
}

// RedisConfig points the connection rate limiter at a Redis server
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config is the complete server configuration
type Config struct {
	Host  string
	Port  int
	Debug bool

	// Exactly one of Size and File selects the board; neither means a default random board.
	Size *Size
	File string
	Seed int64

	HTTPAddr string
	LogLevel string
	LogJSON  bool

	Ngrok NgrokConfig
	Redis RedisConfig

	// ConnLimit is the number of connections admitted per ConnWindow per remote IP. Zero disables it.
	ConnLimit  int
	ConnWindow time.Duration
}

// Default returns a configuration serving a random 10x10 board on port 4444
func Default() *Config {
	return &Config{
		Port:       DefaultPort,
		LogLevel:   DefaultLogLevel,
		ConnWindow: DefaultConnWindow,
	}
}

// Validate checks the configuration before anything is started
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > MaxPort {
		return fmt.Errorf("%w: port must be between 0 and %d, got %d", ErrInvalidConfig, MaxPort, c.Port)
	}
	if c.Size != nil && c.File != "" {
		return fmt.Errorf("%w: size and file are mutually exclusive", ErrInvalidConfig)
	}
	if c.Size != nil && (c.Size.Columns <= 0 || c.Size.Rows <= 0) {
		return fmt.Errorf("%w: size must be positive, got %dx%d", engine.ErrInvalidDimensions, c.Size.Columns, c.Size.Rows)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalidConfig, err)
	}
	if c.Ngrok.Enabled && c.Ngrok.AuthToken == "" {
		return fmt.Errorf("%w: ngrok requires an auth token", ErrInvalidConfig)
	}
	if c.ConnLimit < 0 {
		return fmt.Errorf("%w: connection limit cannot be negative", ErrInvalidConfig)
	}
	if c.ConnLimit > 0 && c.ConnWindow <= 0 {
		return fmt.Errorf("%w: connection window must be positive", ErrInvalidConfig)
	}
	return nil
}

// ListenAddr is the TCP address the game server binds
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BoardSize returns the configured random board size, falling back to the default
func (c *Config) BoardSize() Size {
	if c.Size != nil {
		return *c.Size
	}
	return Size{Columns: engine.DefaultColumns, Rows: engine.DefaultRows}
}

// BuildGrid constructs the shared grid. A zero Seed is replaced with a
// time-based one, which is recorded back into c.Seed.
func (c *Config) BuildGrid() (*engine.Grid, error) {
	opts := []engine.Option{engine.WithInvariantChecks(c.Debug)}
	if c.File != "" {
		return engine.LoadBoardFile(c.File, opts...)
	}

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	size := c.BoardSize()
	return engine.NewRandomGrid(size.Columns, size.Rows, rand.New(rand.NewSource(c.Seed)), opts...)
}
