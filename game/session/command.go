package session

import (
	"regexp"
	"strconv"
)

// Kind names a protocol command
type Kind string

const (
	Look   Kind = "look"
	Help   Kind = "help"
	Bye    Kind = "bye"
	Dig    Kind = "dig"
	Flag   Kind = "flag"
	Deflag Kind = "deflag"

	// Unknown is any line outside the grammar
	Unknown Kind = "unknown"
)

var grammar = regexp.MustCompile(`^(?:(look|help|bye)|(dig|flag|deflag) (-?[0-9]+) (-?[0-9]+))$`)

// Command is one parsed request line
type Command struct {
	Kind Kind
	X, Y int

	// Overflow is set when a coordinate does not fit in an int
	Overflow bool
}

// ParseCommand classifies a line against the protocol grammar. Lines that do
// not match exactly, including extra whitespace, yield Unknown.
func ParseCommand(line string) Command {
	m := grammar.FindStringSubmatch(line)
	if m == nil {
		return Command{Kind: Unknown}
	}
	if m[1] != "" {
		return Command{Kind: Kind(m[1])}
	}

	cmd := Command{Kind: Kind(m[2])}
	var errX, errY error
	cmd.X, errX = strconv.Atoi(m[3])
	cmd.Y, errY = strconv.Atoi(m[4])
	cmd.Overflow = errX != nil || errY != nil
	return cmd
}

// HasCoordinates reports whether the command targets a cell
func (c Command) HasCoordinates() bool {
	return c.Kind == Dig || c.Kind == Flag || c.Kind == Deflag
}

// InBounds reports whether the target cell lies on a columns x rows grid
func (c Command) InBounds(columns, rows int) bool {
	return !c.Overflow && c.X >= 0 && c.X < columns && c.Y >= 0 && c.Y < rows
}
