// Package service provides the layer every transport talks to.
//
// The service package implements:
//   - Player join and leave bookkeeping through a PlayerRegistry
//   - Board operations that mutate and render under one grid lock
//   - Checked operations for callers that have no protocol session (MCP)
//   - Status snapshots for the HTTP API
//   - Prometheus counters for connections, commands and detonations
//
// Core Interfaces:
//
// GameService is the main service interface. It embeds session.Game, so a
// protocol session can run directly against it. PlayerRegistry is satisfied
// by session.Manager.
//
// Architecture:
//
// The service sits between the transports (TCP, WebSocket, MCP, HTTP) and the
// engine. There is exactly one grid per process; every transport shares it,
// and every command is serialized on the grid lock.
//
// Usage:
//
//	grid, _ := cfg.BuildGrid()
//	gameService := service.NewGameService(grid, session.NewManager(),
//		service.WithDebug(cfg.Debug),
//		service.WithLogger(log))
//
//	id, players, err := gameService.Join(ctx, session.TransportTCP, conn.RemoteAddr().String())
//	defer gameService.Leave(ctx, id)
//
//	result, err := gameService.Play(ctx, session.Dig, 3, 4)
package service
