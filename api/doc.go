// Package api provides the read-only HTTP API for the Minesweeper server.
//
// Endpoints:
//   - GET /api/board - Serialized board with its dimensions
//   - GET /api/status - Player count, dimensions, debug flag, hash and cell totals
//   - GET /api/sessions - Connected players; ?idle=5m keeps only quiet ones
//   - GET /health - Liveness check
//   - GET /metrics - Prometheus exposition
//   - GET /ws - WebSocket play, when a handler is mounted with WithWebSocket
//   - POST /mcp - MCP JSON-RPC messages, when mounted with WithMCP
//
// Moves are not accepted over REST. Play happens over TCP, WebSocket or MCP.
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "error message"}
//
// Usage:
//
//	apiServer := api.NewServer(gameService,
//		api.WithWebSocket(wsHandler),
//		api.WithMCP(mcpServer),
//		api.WithLogger(log))
//	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: apiServer}
package api
