// Command analyze prints quick, human-readable heuristics about Minesweeper
// board files: dimensions, bomb density, openings and the minimum number of
// digs needed to clear the board. Boards that fail to parse are reported with
// the loader's error, so the command doubles as a board file validator.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/minesweeper/game/config"
)

// highDensity marks boards where most digs are guesses
const highDensity = 0.4

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Summarize and validate Minesweeper board files",
		ArgsUsage: "[board files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "boards",
				Usage: "directory of board files, used when no files are given",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the results as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			boards, failures, err := collect(cmd.String("dir"), cmd.Args().Slice())
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				if err := writeJSON(out, boards, failures); err != nil {
					return err
				}
			} else {
				for _, info := range boards {
					report(out, info)
				}
				for name, err := range failures {
					fmt.Fprintf(out, "\n=== %s ===\nINVALID: %v\n", name, err)
				}
			}

			if len(failures) > 0 {
				return fmt.Errorf("%d board(s) failed to parse", len(failures))
			}
			return nil
		},
	}
}

// collect describes the given files, or every board in dir when there are none
func collect(dir string, files []string) ([]*config.BoardInfo, map[string]error, error) {
	if len(files) == 0 {
		manager, err := config.NewManager(dir)
		if err != nil {
			return nil, nil, err
		}
		return manager.ListBoards()
	}

	var boards []*config.BoardInfo
	failures := make(map[string]error)
	for _, path := range files {
		info, err := config.DescribeFile(path)
		if err != nil {
			failures[path] = err
			continue
		}
		boards = append(boards, info)
	}
	return boards, failures, nil
}

func report(out io.Writer, info *config.BoardInfo) {
	s, a := info.Stats, info.Analysis

	fmt.Fprintf(out, "\n=== %s (%s) ===\n", info.Name, info.Filename)
	fmt.Fprintf(out, "Size: %d columns x %d rows\n", s.Columns, s.Rows)
	fmt.Fprintf(out, "Bombs: %d (%.1f%%)\n", s.Bombs, a.Density*100)
	fmt.Fprintf(out, "Openings: %d\n", a.Openings)
	fmt.Fprintf(out, "Minimum digs (3BV): %d\n", a.Difficulty)
	fmt.Fprintf(out, "Hash: %016x\n", info.Hash)

	if a.Openings == 0 && s.Bombs < s.Columns*s.Rows {
		fmt.Fprintf(out, "WARNING: no openings, every first dig is a guess\n")
	}
	if a.Density > highDensity {
		fmt.Fprintf(out, "WARNING: bomb density above %.0f%%\n", highDensity*100)
	}
}

func writeJSON(out io.Writer, boards []*config.BoardInfo, failures map[string]error) error {
	errs := make(map[string]string, len(failures))
	for name, err := range failures {
		errs[name] = err.Error()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"boards":   boards,
		"failures": errs,
	})
}
