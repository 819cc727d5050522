package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/minesweeper/client"
)

// botResult is what one bot did during a run
type botResult struct {
	ID          int
	Moves       int
	Digs        int
	Flags       int
	Detonations int
	Reconnects  int
	Finished    bool
	Err         error
}

// bot plays one connection with a deduction strategy, reconnecting after
// a detonation closes its session
type bot struct {
	id       int
	addr     string
	timeout  time.Duration
	maxMoves int
	delay    time.Duration
	strategy *client.Strategy
	log      *zap.Logger
}

func newBot(id int, addr string, seed int64, opts swarmOptions, log *zap.Logger) *bot {
	return &bot{
		id:       id,
		addr:     addr,
		timeout:  opts.Timeout,
		maxMoves: opts.MaxMoves,
		delay:    opts.Delay,
		strategy: client.NewStrategy(rand.New(rand.NewSource(seed + int64(id)))),
		log:      log.With(zap.Int("bot", id)),
	}
}

func (b *bot) run(ctx context.Context) (res botResult) {
	res.ID = b.id

	c, board, err := b.connect(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if c != nil {
			c.Close()
		}
	}()

	for res.Moves < b.maxMoves {
		if ctx.Err() != nil {
			return res
		}

		move, ok := b.strategy.NextMove(board)
		if !ok {
			res.Finished = true
			b.log.Debug("board has no untouched cells left", zap.Int("moves", res.Moves))
			return res
		}
		res.Moves++

		if move.Kind == "flag" {
			res.Flags++
			board, err = c.Flag(move.X, move.Y)
		} else {
			var boom bool
			res.Digs++
			board, boom, err = c.Dig(move.X, move.Y)
			if err == nil && boom {
				res.Detonations++
				b.log.Debug("detonated", zap.Int("x", move.X), zap.Int("y", move.Y))

				// Outside debug mode the server hangs up after BOOM!
				if board, err = c.Look(); err != nil {
					c.Close()
					res.Reconnects++
					c, board, err = b.connect(ctx)
				}
			}
		}
		if err != nil {
			res.Err = fmt.Errorf("bot %d move %d: %w", b.id, res.Moves, err)
			return res
		}

		if b.delay > 0 {
			select {
			case <-ctx.Done():
				return res
			case <-time.After(b.delay):
			}
		}
	}
	return res
}

func (b *bot) connect(ctx context.Context) (*client.Client, *client.Board, error) {
	c, err := client.Dial(ctx, b.addr, b.timeout)
	if err != nil {
		return nil, nil, err
	}
	board, err := c.Look()
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, board, nil
}
