package session

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
)

// LineTerminator ends every message written to a stream connection
const LineTerminator = "\r\n"

// MaxLineLength bounds a single request line
const MaxLineLength = 64 * 1024

// ErrLineTooLong is returned by ReadLine for a request longer than
// MaxLineLength. The rest of that line has been discarded and the stream is
// still usable.
var ErrLineTooLong = errors.New("request line too long")

// Conn is the transport a session runs over: one line in, one message out
type Conn interface {
	// ReadLine returns the next request without its terminator. It returns
	// io.EOF once the peer has closed the stream.
	ReadLine() (string, error)
	WriteMessage(msg string) error
	RemoteAddr() string
	Close() error
}

// StreamConn frames a byte stream such as TCP. Input lines may end in "\n"
// or "\r\n"; output messages are terminated with "\r\n".
type StreamConn struct {
	conn net.Conn
	r    *bufio.Reader

	mu sync.Mutex
	w  *bufio.Writer
}

// NewStreamConn wraps a net.Conn
func NewStreamConn(c net.Conn) *StreamConn {
	return &StreamConn{
		conn: c,
		r:    bufio.NewReaderSize(c, 4096),
		w:    bufio.NewWriter(c),
	}
}

func (s *StreamConn) ReadLine() (string, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := s.r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > MaxLineLength+len(LineTerminator) {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case err == nil:
			text := trimTerminator(line)
			if tooLong || len(text) > MaxLineLength {
				return "", ErrLineTooLong
			}
			return text, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(line) > 0 && !tooLong && len(line) <= MaxLineLength:
			// A final line without a terminator still counts.
			return trimTerminator(line), nil
		default:
			return "", err
		}
	}
}

func trimTerminator(line []byte) string {
	return strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
}

func (s *StreamConn) WriteMessage(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(msg); err != nil {
		return err
	}
	if _, err := s.w.WriteString(LineTerminator); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *StreamConn) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

func (s *StreamConn) Close() error {
	return s.conn.Close()
}
