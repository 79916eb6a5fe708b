// Package scheduler hosts the fixed-tick-rate loop that drives the
// chunk lifecycle pipeline, matching the corpus's own pattern of a
// context-cancellable Run loop ticking a world simulation (the
// annel0-mmo-game BigChunk.Run ticker, adapted here to the
// single-threaded pipeline of pkg/world).
package scheduler

import (
	"context"
	"log"
	"time"
)

// DefaultTickMs is the scheduler's default tick period (§4.9, §9).
const DefaultTickMs = 50

// Pipeline is the subset of world.Pipeline's surface the scheduler
// drives each tick.
type Pipeline interface {
	Tick(now time.Time)
}

// Closer is closed once, during graceful shutdown, after the final
// tick has run.
type Closer interface {
	Close() error
}

// Host runs Pipeline.Tick at a fixed rate until its context is
// canceled.
type Host struct {
	pipeline Pipeline
	tick     time.Duration
	log      *log.Logger
	closers  []Closer
}

// New builds a Host. tickMs <= 0 uses DefaultTickMs.
func New(pipeline Pipeline, tickMs int, logger *log.Logger, closers ...Closer) *Host {
	if tickMs <= 0 {
		tickMs = DefaultTickMs
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Host{pipeline: pipeline, tick: time.Duration(tickMs) * time.Millisecond, log: logger, closers: closers}
}

// Run loops Pipeline.Tick at the configured rate until ctx is done,
// logging (rather than skipping a tick for) any iteration that overran
// its budget. On return, every registered Closer has been closed, in
// the order passed to New.
func (h *Host) Run(ctx context.Context) {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case now := <-ticker.C:
			start := time.Now()
			h.pipeline.Tick(now)
			if elapsed := time.Since(start); elapsed > h.tick {
				h.log.Printf("scheduler: tick overran budget of %v by %v", h.tick, elapsed-h.tick)
			}
		}
	}
}

func (h *Host) shutdown() {
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			h.log.Printf("scheduler: shutdown close error: %v", err)
		}
	}
}
