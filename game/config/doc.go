// Package config provides the server configuration and board file discovery.
//
// The config package handles:
//   - The validated configuration surface filled in by the command line
//   - Construction of the shared grid from a board file or a random layout
//   - Discovery and description of board files in a directory
//
// Board Selection:
//
// A server plays exactly one board. It is either read from a file (File) or
// generated randomly (Size, defaulting to 10x10) with each cell holding a bomb
// with probability 1/3. Setting both is rejected by Validate. A zero Seed is
// replaced by a time-based seed when the grid is built.
//
// Usage:
//
//	cfg := config.Default()
//	cfg.File = "boards/board_5_4.txt"
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
//	grid, err := cfg.BuildGrid()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Describe every board in a directory
//	manager, err := config.NewManager("boards")
//	boards, failures, err := manager.ListBoards()
package config
