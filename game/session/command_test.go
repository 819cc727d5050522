package session

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		expected Command
	}{
		{"look", Command{Kind: Look}},
		{"help", Command{Kind: Help}},
		{"bye", Command{Kind: Bye}},
		{"dig 3 4", Command{Kind: Dig, X: 3, Y: 4}},
		{"flag 0 0", Command{Kind: Flag}},
		{"deflag 10 2", Command{Kind: Deflag, X: 10, Y: 2}},
		{"dig -1 5", Command{Kind: Dig, X: -1, Y: 5}},
		{"dig 99999999999999999999 0", Command{Kind: Dig, Y: 0, Overflow: true}},
		{"", Command{Kind: Unknown}},
		{"LOOK", Command{Kind: Unknown}},
		{"look ", Command{Kind: Unknown}},
		{" look", Command{Kind: Unknown}},
		{"dig 1", Command{Kind: Unknown}},
		{"dig 1  2", Command{Kind: Unknown}},
		{"dig a b", Command{Kind: Unknown}},
		{"dig 1 2 3", Command{Kind: Unknown}},
		{"dig +1 2", Command{Kind: Unknown}},
		{"look\tx", Command{Kind: Unknown}},
		{"byebye", Command{Kind: Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseCommand(tt.line)
			if got.Kind != tt.expected.Kind {
				t.Fatalf("Expected kind %s, got %s", tt.expected.Kind, got.Kind)
			}
			if got.Overflow != tt.expected.Overflow {
				t.Errorf("Expected overflow %v, got %v", tt.expected.Overflow, got.Overflow)
			}
			if !got.Overflow && (got.X != tt.expected.X || got.Y != tt.expected.Y) {
				t.Errorf("Expected (%d,%d), got (%d,%d)", tt.expected.X, tt.expected.Y, got.X, got.Y)
			}
		})
	}
}

func TestCommandInBounds(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected bool
	}{
		{Command{Kind: Dig, X: 0, Y: 0}, true},
		{Command{Kind: Dig, X: 2, Y: 1}, true},
		{Command{Kind: Dig, X: 3, Y: 0}, false},
		{Command{Kind: Dig, X: 0, Y: 2}, false},
		{Command{Kind: Dig, X: -1, Y: 0}, false},
		{Command{Kind: Dig, X: 0, Y: -1}, false},
		{Command{Kind: Dig, Overflow: true}, false},
	}

	for _, tt := range tests {
		if got := tt.cmd.InBounds(3, 2); got != tt.expected {
			t.Errorf("InBounds(%+v): expected %v, got %v", tt.cmd, tt.expected, got)
		}
	}

	if (Command{Kind: Look}).HasCoordinates() {
		t.Error("Expected look to have no coordinates")
	}
	if !(Command{Kind: Deflag}).HasCoordinates() {
		t.Error("Expected deflag to have coordinates")
	}
}
