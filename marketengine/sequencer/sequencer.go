// Package sequencer serializes all market actions onto a single goroutine.
// Every action runs to completion before the next one starts, so engines
// never observe interleaved state and need no locking of their own.
package sequencer

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/waxlabs/marketengine/marketengine/logger"
)

// Action is one unit of serialized work. It either fully commits or
// returns an error having changed nothing.
type Action func(ctx context.Context) error

type task struct {
	id     snowflake.ID
	action Action
	result chan error
}

// Sequencer owns the single execution goroutine. Submit from any number of
// goroutines; execution order follows submission order.
type Sequencer struct {
	inbox chan task
}

func New(inboxSize int) *Sequencer {
	return &Sequencer{
		inbox: make(chan task, inboxSize),
	}
}

// Run executes submitted actions until ctx is cancelled. It must be run in
// exactly one goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("sequencer started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("sequencer stopping")
			s.drain(ctx)
			return
		case t := <-s.inbox:
			t.result <- s.execute(ctx, t)
		}
	}
}

// Submit queues an action and blocks until it has executed. The returned
// error is the action's own result.
func (s *Sequencer) Submit(ctx context.Context, action Action) error {
	t := task{
		id:     snowflake.New(time.Now()),
		action: action,
		result: make(chan error, 1),
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.inbox <- t:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-t.result:
		return err
	}
}

func (s *Sequencer) execute(ctx context.Context, t task) error {
	start := time.Now()
	err := t.action(ctx)
	logger.LogAction(t.id.String(), time.Since(start), err)
	return err
}

// drain rejects queued actions after shutdown so submitters do not hang.
func (s *Sequencer) drain(ctx context.Context) {
	for {
		select {
		case t := <-s.inbox:
			t.result <- ctx.Err()
		default:
			return
		}
	}
}
