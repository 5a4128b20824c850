package timer

import (
	"context"
	"testing"
	"time"
)

func waitDone(t *testing.T, c *Countdown) {
	t.Helper()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not finish")
	}
}

func TestCountdownExpires(t *testing.T) {
	c := New(3, WithTick(time.Millisecond))

	if c.Remaining() != 3 || c.Expired() {
		t.Fatalf("unexpected initial state: remaining %d expired %v", c.Remaining(), c.Expired())
	}
	if c.Done() != nil {
		t.Fatalf("done channel must be nil before start")
	}

	c.Start(context.Background())
	waitDone(t, c)

	if !c.Expired() {
		t.Fatalf("expected countdown to expire")
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected 0 seconds left, got %d", c.Remaining())
	}
}

func TestCountdownStop(t *testing.T) {
	c := New(60, WithTick(time.Hour))
	c.Start(context.Background())
	c.Stop()

	waitDone(t, c)
	if c.Expired() {
		t.Fatalf("stopped countdown must not report expiry")
	}
	if c.Remaining() != 60 {
		t.Fatalf("expected untouched remaining time, got %d", c.Remaining())
	}

	// Stop on an idle countdown is a no-op.
	c.Stop()
}

func TestCountdownContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(60, WithTick(time.Hour))
	c.Start(ctx)
	cancel()

	waitDone(t, c)
	if c.Expired() {
		t.Fatalf("cancelled countdown must not report expiry")
	}
}

func TestCountdownRestartAndReset(t *testing.T) {
	c := New(2, WithTick(time.Millisecond))
	c.Start(context.Background())
	waitDone(t, c)

	c.Reset(5)
	if c.Remaining() != 5 || c.Expired() {
		t.Fatalf("unexpected state after reset: remaining %d expired %v", c.Remaining(), c.Expired())
	}

	c.Start(context.Background())
	first := c.Done()
	c.Start(context.Background())
	if c.Done() != first {
		t.Fatalf("Start while running must be a no-op")
	}
	waitDone(t, c)

	if !c.Expired() {
		t.Fatalf("expected expiry after restart")
	}
}

func TestZeroCountdownExpiresImmediately(t *testing.T) {
	c := New(0)
	c.Start(context.Background())
	waitDone(t, c)

	if !c.Expired() {
		t.Fatalf("zero countdown must expire immediately")
	}
}
