package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
	"github.com/wricardo/mcp-training/minesweeper/game/session"
)

const (
	serverName    = "Minesweeper"
	serverVersion = "1.0.0"
)

const instructions = `Minesweeper - MCP Interface

Every player shares one board. Changes made here are visible to players
connected over TCP and WebSocket, and theirs are visible to you.

AVAILABLE TOOLS:
- look: Show the current board
- dig: Dig an untouched cell
- flag: Flag an untouched cell
- deflag: Remove a flag
- describe_cell: Show the state of one cell
- status: Player count, board size and cell totals
- game_instructions: Rules and board legend`

const gameInstructions = `Minesweeper - Rules

BOARD:
Coordinates are (x, y) with x the column and y the row, both starting at 0
in the top-left corner.

LEGEND:
  -    untouched cell
  F    flagged cell
  ' '  cleared cell with no bombs around it
  1-8  cleared cell and the number of bombs among its eight neighbors

PLAYING:
- dig clears an untouched cell. A cell with no neighboring bombs also clears
  its neighbors, and so on outward.
- Digging a bomb sets it off. The bomb is removed, the cell is cleared and the
  numbers around it go down by one. Other players keep playing on the same
  board.
- flag marks an untouched cell; deflag turns it back to untouched. A flag is
  only a marker. A cascade clears flagged cells too.
- Coordinates off the board are rejected.`

// Server exposes the shared board as MCP tools. It calls the game service
// directly and holds no per-caller state.
type Server struct {
	svc       service.GameService
	log       *zap.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer creates an MCP server with every tool registered
func NewServer(svc service.GameService, opts ...Option) *Server {
	s := &Server{svc: svc, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin and stdout until stdin closes
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP handles POST /mcp with one JSON-RPC message per request
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := s.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// notifications have no reply
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Warn("failed to write MCP response", zap.Error(err))
	}
}

func coordinateSchema() map[string]interface{} {
	return map[string]interface{}{
		"x": map[string]interface{}{
			"type":        "integer",
			"description": "Column of the cell (0-based)",
		},
		"y": map[string]interface{}{
			"type":        "integer",
			"description": "Row of the cell (0-based)",
		},
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "look",
		Description: "Show the current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleLook)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dig",
		Description: "Dig an untouched cell. Zero cells clear their neighbors; a bomb is set off and removed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: coordinateSchema(),
			Required:   []string{"x", "y"},
		},
	}, s.handlePlay(session.Dig))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "flag",
		Description: "Flag an untouched cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: coordinateSchema(),
			Required:   []string{"x", "y"},
		},
	}, s.handlePlay(session.Flag))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "deflag",
		Description: "Remove the flag from a flagged cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: coordinateSchema(),
			Required:   []string{"x", "y"},
		},
	}, s.handlePlay(session.Deflag))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell: its state and, once cleared, how many bombs surround it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: coordinateSchema(),
			Required:   []string{"x", "y"},
		},
	}, s.handleDescribeCell)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "status",
		Description: "Show player count, board size and cell totals",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStatus)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGameInstructions)
}

func (s *Server) handleLook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatBoard(s.svc.Board(ctx))), nil
}

func (s *Server) handlePlay(kind session.Kind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		x, y, err := coordinates(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := s.svc.Play(ctx, kind, x, y)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.log.Debug("mcp move", zap.String("command", string(kind)), zap.Int("x", x), zap.Int("y", y))

		columns, rows := s.svc.Dimensions()
		board := formatBoard(&service.BoardView{Columns: columns, Rows: rows, Board: result.Board})
		if result.Detonated {
			return mcp.NewToolResultText(fmt.Sprintf("%s (%d,%d) was a bomb. It has been removed.\n\n%s",
				result.Message, x, y, board)), nil
		}
		return mcp.NewToolResultText(board), nil
	}
}

func (s *Server) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, y, err := coordinates(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	view, err := s.svc.Cell(ctx, x, y)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCell(view)), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.svc.Status(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Players: %d\n", st.Players)
	fmt.Fprintf(&b, "Board: %d columns by %d rows\n", st.Columns, st.Rows)
	fmt.Fprintf(&b, "Untouched: %d, Flagged: %d, Cleared: %d\n", st.Stats.Untouched, st.Stats.Flagged, st.Stats.Cleared)
	fmt.Fprintf(&b, "Board hash: %016x\n", st.Hash)
	if st.Debug {
		b.WriteString("Debug mode: detonations do not disconnect players\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

var errMissingCoordinates = errors.New("x and y must be integers")

// coordinates reads the x and y arguments. JSON numbers arrive as float64.
func coordinates(request mcp.CallToolRequest) (int, int, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return 0, 0, errMissingCoordinates
	}
	x, okX := integer(args["x"])
	y, okY := integer(args["y"])
	if !okX || !okY {
		return 0, 0, errMissingCoordinates
	}
	return x, y, nil
}

func integer(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// formatBoard renders the board with row numbers
func formatBoard(view *service.BoardView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %d columns by %d rows\n\n", view.Columns, view.Rows)
	for y, row := range strings.Split(view.Board, "\r\n") {
		fmt.Fprintf(&b, "%3d | %s\n", y, row)
	}
	return b.String()
}

func formatCell(view engine.CellView) string {
	switch view.State {
	case engine.Cleared:
		return fmt.Sprintf("Cell (%d,%d) is cleared with %d adjacent bombs", view.X, view.Y, view.AdjacentBombs)
	case engine.Flagged:
		return fmt.Sprintf("Cell (%d,%d) is flagged", view.X, view.Y)
	default:
		return fmt.Sprintf("Cell (%d,%d) is untouched", view.X, view.Y)
	}
}
