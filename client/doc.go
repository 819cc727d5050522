// Package client is a Go client for the Minesweeper line protocol.
//
// It dials the server, parses the welcome message, and turns every board
// reply into a Board. Strategy picks moves from the revealed numbers and is
// what the swarm command runs.
//
// Usage:
//
//	c, err := client.Dial(ctx, "localhost:4444", 5*time.Second)
//	if err != nil {
//		return err
//	}
//	defer c.Bye()
//
//	board, boom, err := c.Dig(3, 4)
package client
