// Package mcp exposes the shared Minesweeper board over the Model Context
// Protocol.
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - look: Current board with row numbers
//   - dig: Dig a cell; reports BOOM! and the board after a detonation
//   - flag: Flag an untouched cell
//   - deflag: Remove a flag
//   - describe_cell: State and neighbor count of one cell
//   - status: Player count, board size, cell totals and board hash
//   - game_instructions: Rules and legend
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: Server is an http.Handler for POST /mcp
//
// MCP callers have no protocol session. They are not counted as players, and
// a detonation never disconnects them. Off-board coordinates come back as a
// tool error result.
//
// Usage:
//
//	mcpServer := mcp.NewServer(gameService, mcp.WithLogger(log))
//	router.Handle("/mcp", mcpServer)
//
//	// or, in the stdio-mcp command
//	if err := mcpServer.ServeStdio(); err != nil {
//		return err
//	}
package mcp
