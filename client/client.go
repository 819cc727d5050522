package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const boomLine = "BOOM!"

var (
	ErrRefused            = errors.New("connection refused by server")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrDisconnected       = errors.New("server closed the connection")
)

var welcomePattern = regexp.MustCompile(`^Welcome to Minesweeper\. Players: (\d+) including you\. Board: (\d+) columns by (\d+) rows\.`)

// Welcome is the parsed greeting
type Welcome struct {
	Players int
	Columns int
	Rows    int
	Raw     string
}

// Client speaks the line protocol over one connection. It is not safe for
// concurrent use.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration

	Welcome Welcome
}

// Dial connects to addr and reads the welcome message
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c, err := NewClient(conn, timeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an established connection and reads the welcome message.
// A zero timeout disables read and write deadlines.
func NewClient(conn net.Conn, timeout time.Duration) (*Client, error) {
	c := &Client{conn: conn, r: bufio.NewReader(conn), timeout: timeout}

	line, err := c.readLine()
	if err != nil {
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	w, err := ParseWelcome(line)
	if err != nil {
		return nil, err
	}
	c.Welcome = w
	return c, nil
}

// ParseWelcome extracts the player count and board size from a greeting
func ParseWelcome(line string) (Welcome, error) {
	m := welcomePattern.FindStringSubmatch(line)
	if m == nil {
		if strings.HasPrefix(line, "Too many connections") {
			return Welcome{}, fmt.Errorf("%w: %s", ErrRefused, line)
		}
		return Welcome{}, fmt.Errorf("%w: welcome %q", ErrUnexpectedResponse, line)
	}
	players, _ := strconv.Atoi(m[1])
	columns, _ := strconv.Atoi(m[2])
	rows, _ := strconv.Atoi(m[3])
	return Welcome{Players: players, Columns: columns, Rows: rows, Raw: line}, nil
}

// Look fetches the current board
func (c *Client) Look() (*Board, error) {
	if err := c.send("look"); err != nil {
		return nil, err
	}
	return c.readBoard("")
}

// Dig digs (x, y). On a detonation it returns a nil board and true.
func (c *Client) Dig(x, y int) (*Board, bool, error) {
	if err := c.send(fmt.Sprintf("dig %d %d", x, y)); err != nil {
		return nil, false, err
	}
	first, err := c.readLine()
	if err != nil {
		return nil, false, err
	}
	if first == boomLine {
		return nil, true, nil
	}
	b, err := c.readBoard(first)
	return b, false, err
}

// Flag flags (x, y)
func (c *Client) Flag(x, y int) (*Board, error) {
	if err := c.send(fmt.Sprintf("flag %d %d", x, y)); err != nil {
		return nil, err
	}
	return c.readBoard("")
}

// Deflag removes the flag on (x, y)
func (c *Client) Deflag(x, y int) (*Board, error) {
	if err := c.send(fmt.Sprintf("deflag %d %d", x, y)); err != nil {
		return nil, err
	}
	return c.readBoard("")
}

// Help returns the help text
func (c *Client) Help() (string, error) {
	return c.Raw("help", helpLines)
}

// Raw sends any line and reads exactly n response lines
func (c *Client) Raw(line string, n int) (string, error) {
	if err := c.send(line); err != nil {
		return "", err
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		l, err := c.readLine()
		if err != nil {
			return "", err
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\r\n"), nil
}

// Bye ends the session and closes the connection
func (c *Client) Bye() error {
	err := c.send("bye")
	c.conn.Close()
	return err
}

// Close closes the connection without saying bye
func (c *Client) Close() error {
	return c.conn.Close()
}

// helpLines is the number of lines in the server's help text
const helpLines = 7

func (c *Client) send(line string) error {
	if c.timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	if _, err := io.WriteString(c.conn, line+"\r\n"); err != nil {
		return fmt.Errorf("send %q: %w", line, err)
	}
	return nil
}

func (c *Client) readLine() (string, error) {
	if c.timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrDisconnected
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readBoard reads Rows lines, starting with first when it was already consumed
func (c *Client) readBoard(first string) (*Board, error) {
	lines := make([]string, 0, c.Welcome.Rows)
	if first != "" {
		lines = append(lines, first)
	}
	for len(lines) < c.Welcome.Rows {
		l, err := c.readLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return ParseBoard(lines, c.Welcome.Columns)
}
