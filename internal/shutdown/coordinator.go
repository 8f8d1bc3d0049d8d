// Package shutdown implements the cooperative stop protocol: one broadcast
// stop signal and a completion barrier that unblocks once every registered
// task has reported done.
package shutdown

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Coordinator broadcasts a stop signal through a context and waits for every
// registered task to finish. Tasks register before starting and call their
// done func exactly once on exit.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown is called. Long-lived tasks select on
// its Done channel.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Register marks one task as running and returns its completion func.
func (c *Coordinator) Register() (done func()) {
	c.wg.Add(1)
	var once sync.Once
	return func() {
		once.Do(c.wg.Done)
	}
}

// Shutdown raises the stop signal. Safe to call more than once.
func (c *Coordinator) Shutdown() {
	c.cancel()
}

// Wait blocks until every registered task has reported done, or the timeout
// trips. Returns false on timeout.
func (c *Coordinator) Wait(timeout time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return true
	case <-time.After(timeout):
		slog.Warn("Shutdown barrier timed out, some tasks did not report done", "timeout", timeout)
		return false
	}
}
