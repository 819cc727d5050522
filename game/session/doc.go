// Package session implements the per-connection Minesweeper protocol and the
// registry of live players.
//
// The session package implements:
//   - The line grammar (look, help, bye, dig x y, flag x y, deflag x y)
//   - The Connected -> Active -> Closed state machine run for every connection
//   - Message framing for byte streams through StreamConn
//   - A thread-safe registry of connected players
//
// Core Types:
//
// Session drives one connection. It greets the player, then reads one line at
// a time and answers with the rendered board, the help text or "BOOM!". A
// detonation ends the session unless the server runs in debug mode.
// Coordinates off the board are answered with the current board.
//
// Conn abstracts the transport so the same state machine serves raw TCP and
// WebSocket clients. Manager tracks who is connected; its count is the number
// shown in the welcome message.
//
// Concurrency:
//
// Sessions never share state with each other. All grid access goes through
// the Game interface, whose implementation serializes every command on the
// grid lock. The registry has its own lock and is never held while the grid
// lock is taken.
//
// Usage:
//
//	id, players, err := registry.Register(session.Player{Transport: session.TransportTCP})
//	if err != nil {
//		return err
//	}
//	defer registry.Unregister(id)
//
//	sess := session.New(id, session.NewStreamConn(conn), game, session.Options{
//		Players: players,
//		Logger:  log,
//	})
//	if err := sess.Run(ctx); err != nil {
//		log.Warn("session ended", zap.Error(err))
//	}
package session
