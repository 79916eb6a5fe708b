package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"testing"
	"time"
)

type countingPipeline struct {
	ticks atomic.Int32
}

func (p *countingPipeline) Tick(now time.Time) { p.ticks.Add(1) }

type countingCloser struct {
	closed atomic.Bool
}

func (c *countingCloser) Close() error {
	c.closed.Store(true)
	return nil
}

func nilLogger() *log.Logger {
	return log.New(discard{}, "", 0)
}

type discard struct{}

func (discard) Write(b []byte) (int, error) { return len(b), nil }

func TestHostTicksRepeatedly(t *testing.T) {
	p := &countingPipeline{}
	h := New(p, 1, nilLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	h.Run(ctx)

	if p.ticks.Load() == 0 {
		t.Fatal("expected at least one tick within 50ms at a 1ms tick rate")
	}
}

func TestHostClosesRegisteredClosersOnShutdown(t *testing.T) {
	p := &countingPipeline{}
	c := &countingCloser{}
	h := New(p, 1, nilLogger(), c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { h.Run(ctx); close(done) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	if !c.closed.Load() {
		t.Fatal("registered Closer should be closed on shutdown")
	}
}
