// Package timer provides the per-question countdown.
package timer

import (
	"context"
	"sync"
	"time"
)

// Countdown counts whole seconds down in a background goroutine. Readers
// observe the remaining time through Remaining and Expired.
type Countdown struct {
	seconds int
	tick    time.Duration

	mu        sync.Mutex
	remaining int
	expired   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option customizes a Countdown.
type Option func(*Countdown)

// WithTick changes the length of one countdown step.
func WithTick(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.tick = d
		}
	}
}

// New creates a stopped countdown of the given number of seconds.
func New(seconds int, opts ...Option) *Countdown {
	c := &Countdown{
		seconds:   max(seconds, 0),
		tick:      time.Second,
		remaining: max(seconds, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start runs the countdown from the full duration. It is a no-op while the
// countdown is already running. The countdown stops when ctx is done.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.remaining = c.seconds
	c.expired = c.seconds == 0
	c.cancel = cancel
	c.done = done

	if c.expired {
		c.cancel = nil
		cancel()
		close(done)
		return
	}

	go c.run(ctx, cancel, done)
}

func (c *Countdown) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	defer close(done)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			c.finish(false)
			return
		case <-ticker.C:
			c.mu.Lock()
			c.remaining--
			left := c.remaining
			c.mu.Unlock()

			if left <= 0 {
				c.finish(true)
				return
			}
		}
	}
}

// finish runs before done is closed, so a Start issued after Stop returns
// always sees an idle countdown.
func (c *Countdown) finish(expired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if expired {
		c.expired = true
	}
	c.cancel = nil
}

// Stop halts a running countdown and waits for its goroutine to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// Reset stops the countdown and optionally changes its duration.
func (c *Countdown) Reset(seconds int) {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seconds > 0 {
		c.seconds = seconds
	}
	c.remaining = c.seconds
	c.expired = false
}

// Remaining returns the number of seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Expired reports whether the countdown reached zero.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Done is closed when the current run ends, by expiry or by Stop. It is
// nil before the first Start.
func (c *Countdown) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
