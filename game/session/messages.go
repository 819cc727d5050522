package session

import (
	"fmt"
	"strings"
)

// BoomMessage is sent when a dig detonates a bomb
const BoomMessage = "BOOM!"

// HelpMessage lists the supported commands, one per line
var HelpMessage = buildHelp()

func buildHelp() string {
	entries := [][2]string{
		{"look", "displays current state of a board"},
		{"dig [x] [y]", "digs a cell in column x row y if it was untouched"},
		{"flag [x] [y]", "flags a cell in column x row y if it was untouched"},
		{"deflag [x] [y]", "deflags a cell in column x row y if it was flagged"},
		{"help", "shows instructions"},
		{"bye", "ends a connection"},
	}

	lines := []string{"Supported commands are:"}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%-15s%s", e[0], e[1]))
	}
	return strings.Join(lines, "\r\n")
}

// WelcomeMessage greets a new player with the live count and the board size
func WelcomeMessage(players, columns, rows int) string {
	return fmt.Sprintf("Welcome to Minesweeper. Players: %d including you. Board: %d columns by %d rows. Type 'help' for help.",
		players, columns, rows)
}
