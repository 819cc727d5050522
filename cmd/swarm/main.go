// Command swarm connects a crowd of bots to a Minesweeper server and has
// them play the shared board concurrently. It is a load and correctness
// check: every bot reconnects after a detonation and keeps playing until the
// board has no untouched cells or its move budget runs out.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/internal/logger"
)

// swarmOptions tune every bot in a run
type swarmOptions struct {
	Bots     int
	MaxMoves int
	Delay    time.Duration
	Timeout  time.Duration
	Seed     int64
}

// swarmSummary totals the bot results
type swarmSummary struct {
	Bots        int
	Failed      int
	Finished    int
	Moves       int
	Detonations int
	Reconnects  int
	Elapsed     time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "swarm",
		Usage: "Play a Minesweeper server with many concurrent bots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "localhost:4444",
				Usage:   "server address",
				Sources: cli.EnvVars("SWARM_ADDR"),
			},
			&cli.IntFlag{
				Name:  "bots",
				Value: 10,
				Usage: "number of concurrent bots",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 500,
				Usage: "moves per bot before it stops",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "pause between moves",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Second,
				Usage: "dial and per-reply timeout",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "seed for the bots' guesses (0 uses the clock)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Sources: cli.EnvVars("LOG_JSON"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.Init(cmd.String("log-level"), cmd.Bool("log-json"))
			defer logger.Sync()

			opts := swarmOptions{
				Bots:     int(cmd.Int("bots")),
				MaxMoves: int(cmd.Int("max-moves")),
				Delay:    cmd.Duration("delay"),
				Timeout:  cmd.Duration("timeout"),
				Seed:     cmd.Int64("seed"),
			}
			if opts.Bots <= 0 {
				return errors.New("bots must be positive")
			}
			if opts.Seed == 0 {
				opts.Seed = time.Now().UnixNano()
			}

			log.Info("starting swarm",
				zap.String("addr", cmd.String("addr")),
				zap.Int("bots", opts.Bots),
				zap.Int64("seed", opts.Seed))

			summary, results := runSwarm(ctx, cmd.String("addr"), opts, log)
			for _, r := range results {
				if r.Err != nil {
					log.Warn("bot failed", zap.Int("bot", r.ID), zap.Error(r.Err))
				}
			}
			log.Info("swarm finished",
				zap.Int("bots", summary.Bots),
				zap.Int("failed", summary.Failed),
				zap.Int("finished", summary.Finished),
				zap.Int("moves", summary.Moves),
				zap.Int("detonations", summary.Detonations),
				zap.Int("reconnects", summary.Reconnects),
				zap.Duration("elapsed", summary.Elapsed))

			if summary.Failed == summary.Bots {
				return fmt.Errorf("all %d bots failed", summary.Bots)
			}
			return nil
		},
	}
}

// runSwarm runs every bot to completion and totals their results
func runSwarm(ctx context.Context, addr string, opts swarmOptions, log *zap.Logger) (swarmSummary, []botResult) {
	start := time.Now()
	results := make([]botResult, opts.Bots)

	var wg sync.WaitGroup
	for i := 0; i < opts.Bots; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = newBot(id, addr, opts.Seed, opts, log).run(ctx)
		}(i)
	}
	wg.Wait()

	summary := swarmSummary{Bots: opts.Bots, Elapsed: time.Since(start)}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		}
		if r.Finished {
			summary.Finished++
		}
		summary.Moves += r.Moves
		summary.Detonations += r.Detonations
		summary.Reconnects += r.Reconnects
	}
	return summary, results
}
