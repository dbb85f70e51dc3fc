package coop

import "github.com/coopkit/coop/internal/task"

// Cond is a condition variable over a Locker. Unlike the core wait
// structures it keeps its blocked tasks on a stack, so it makes no promise
// about wake order.
type Cond struct {
	L Locker

	s       *Scheduler
	blocked task.Stack
}

// NewCond returns a condition variable bound to s with Locker l.
func NewCond(s *Scheduler, l Locker) *Cond {
	return &Cond{L: l, s: s}
}

func (c *Cond) trySignal() bool {
	if t := c.blocked.Pop(); t != nil {
		c.s.ready(t, task.Normal)
		return true
	}
	return false
}

// Signal wakes one blocked task, if there is one.
func (c *Cond) Signal() {
	c.trySignal()
}

// Broadcast wakes every blocked task.
func (c *Cond) Broadcast() {
	for c.trySignal() {
	}
}

// Wait atomically releases L and parks the current task until Signal or
// Broadcast, then reacquires L before returning. "Atomically" holds by
// construction: no dispatch happens between the unlock and the park.
func (c *Cond) Wait() {
	t := c.s.mustCurrent("Cond.Wait")
	t.State = task.Waiting
	c.blocked.Push(t)
	c.L.Unlock()
	c.s.pause(t)
	c.L.Lock()
}
