//go:build linux

package coop

import (
	"testing"
	"time"
)

func TestOSClock(t *testing.T) {
	c, err := NewOSClock()
	if err != nil {
		t.Fatalf("NewOSClock: %v", err)
	}
	defer c.(interface{ Close() error }).Close()

	t0 := c.Ticks()
	time.Sleep(2 * time.Millisecond)
	if t1 := c.Ticks(); !tickBefore(t0, t1) {
		t.Errorf("ticks did not advance: %d then %d", t0, t1)
	}

	start := time.Now()
	c.Idle(5 * time.Millisecond)
	if d := time.Since(start); d < 5*time.Millisecond {
		t.Errorf("bounded idle returned after %v, want >= 5ms", d)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		c.Wake()
	}()
	start = time.Now()
	c.Idle(-1)
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("unbounded idle was not interrupted by Wake (%v)", d)
	}

	// A second idle must block again: the eventfd counter was drained.
	start = time.Now()
	c.Idle(5 * time.Millisecond)
	if d := time.Since(start); d < 5*time.Millisecond {
		t.Errorf("idle after wake returned after %v, want >= 5ms", d)
	}
}
