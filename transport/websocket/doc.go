// Package websocket carries the Minesweeper line protocol over WebSocket.
//
// The websocket package implements:
//   - A session.Conn where one text frame is one request line or one reply
//   - Ping/pong keepalive with a 60 second pong deadline
//   - An http.Handler that upgrades, registers the player and runs a session
//
// Message Protocol:
//
// Frames carry exactly the text a TCP client would send or receive, without
// the line terminator. A multi-row board is one frame whose rows are joined
// with "\r\n". Trailing "\r\n" on incoming frames is ignored.
//
// Usage:
//
//	wsHandler := websocket.NewHandler(gameService,
//		websocket.WithLimiter(limiter),
//		websocket.WithLogger(log))
//	router.Handle("/ws", wsHandler)
//	defer wsHandler.Shutdown(ctx)
//
// Concurrency:
//
// Each socket runs its own session goroutine. Data frames are written under a
// per-connection mutex; pings and the close frame use WriteControl, which is
// safe alongside them.
package websocket
