package coop

import "time"

// Ticks is a count on a monotonic clock. Tick values may wrap; all
// comparisons go through signed difference, so only the window between a
// task's sleep and its wake needs to fit in half the range.
type Ticks int64

// tickBefore reports whether a is earlier than b, tolerating wraparound.
func tickBefore(a, b Ticks) bool {
	return a-b < 0
}

// Clock is the platform shim the scheduler runs against: a monotonic tick
// source plus the idle hook used when nothing is runnable.
//
// Idle blocks for at most max, or until Wake is called; a negative max
// means no bound. Wake is the one method that may be called from any OS
// thread; it is how external event sources interrupt an idle scheduler.
type Clock interface {
	Ticks() Ticks
	TicksPerSecond() int64
	Idle(max time.Duration)
	Wake()
}

// ticksIn converts a duration to ticks, rounding up so that a bounded wait
// never wakes early.
func ticksIn(d time.Duration, tps int64) Ticks {
	if tps == int64(time.Second) {
		return Ticks(d)
	}
	ns := d.Nanoseconds()
	sec := ns / int64(time.Second)
	rem := ns % int64(time.Second)
	return Ticks(sec*tps + (rem*tps+int64(time.Second)-1)/int64(time.Second))
}

// durationOf converts a tick delta back to a duration for the idle hook.
func durationOf(dt Ticks, tps int64) time.Duration {
	if tps == int64(time.Second) {
		return time.Duration(dt)
	}
	sec := int64(dt) / tps
	rem := int64(dt) % tps
	return time.Duration(sec)*time.Second + time.Duration(rem*int64(time.Second)/tps)
}

// monoClock is the portable default: nanosecond ticks from the Go runtime's
// monotonic reading, and an idle hook parked on a channel.
type monoClock struct {
	start time.Time
	wake  chan struct{}
}

// NewClock returns the portable clock. Ticks are nanoseconds.
func NewClock() Clock {
	return &monoClock{
		start: time.Now(),
		wake:  make(chan struct{}, 1),
	}
}

func (c *monoClock) Ticks() Ticks {
	return Ticks(time.Since(c.start))
}

func (c *monoClock) TicksPerSecond() int64 {
	return int64(time.Second)
}

func (c *monoClock) Idle(max time.Duration) {
	if max < 0 {
		<-c.wake
		return
	}
	if max == 0 {
		return
	}
	tm := time.NewTimer(max)
	select {
	case <-c.wake:
	case <-tm.C:
	}
	tm.Stop()
}

func (c *monoClock) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
