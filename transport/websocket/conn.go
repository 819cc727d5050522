package websocket

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// Conn carries the line protocol over a WebSocket. One text frame is one
// request line and each reply is sent as one text frame.
type Conn struct {
	ws *websocket.Conn

	// WriteControl may run concurrently with data writes; data writes may not
	mu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewConn wraps an upgraded connection and starts the keepalive pings
func NewConn(ws *websocket.Conn) *Conn {
	return newConn(ws, pingPeriod)
}

func newConn(ws *websocket.Conn, period time.Duration) *Conn {
	c := &Conn{ws: ws, done: make(chan struct{})}

	// An oversized frame cannot be skipped; gorilla closes with 1009.
	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.pingLoop(period)
	return c
}

// ReadLine returns the next text frame. A trailing "\r\n" or "\n" is
// stripped. Binary frames are skipped.
func (c *Conn) ReadLine() (string, error) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", io.EOF
			}
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		line := strings.TrimSuffix(string(data), "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}
}

func (c *Conn) WriteMessage(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Close sends a close frame and closes the underlying connection. It is safe
// to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))

		err = c.ws.Close()
	})
	return err
}

func (c *Conn) pingLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
