package coop

import (
	"time"

	"github.com/coopkit/coop/internal/task"
)

// Event is a level-triggered flag with FIFO waiters. A set with nobody
// waiting persists until the next wait consumes it; a set with waiters
// wakes them all and leaves the flag clear. The storage is caller-owned;
// initialize in place with Init.
type Event struct {
	s       *Scheduler
	flagged bool
	waiters task.Queue
}

// Init binds the event to a scheduler, unflagged. It must be called before
// any other method.
func (e *Event) Init(s *Scheduler) {
	e.s = s
}

// Set wakes every waiter in arrival order, or latches the flag when nobody
// is waiting. Setting an already-flagged event is a no-op. Set never
// yields.
func (e *Event) Set() {
	if e.s == nil {
		panic("coop: event used before Init")
	}
	if e.waiters.Empty() {
		e.flagged = true
		return
	}
	for t := e.waiters.Pop(); t != nil; t = e.waiters.Pop() {
		t.WaitQ = nil
		e.s.ready(t, task.Normal)
	}
}

// Wait consumes the flag if it is set, otherwise parks the current task
// until the next Set.
func (e *Event) Wait() {
	if e.s == nil {
		panic("coop: event used before Init")
	}
	t := e.s.mustCurrent("Event.Wait")
	if e.flagged {
		e.flagged = false
		return
	}
	t.State = task.Waiting
	e.waiters.Push(t)
	t.WaitQ = &e.waiters
	e.s.pause(t)
}

// WaitFor is Wait with a deadline. It reports true when the event was set
// and false on timeout. The task is parked on the waiter queue and the
// timer queue at once; whichever wakeup fires first unlinks it from both,
// so the loser is a no-op. A non-positive d only polls the flag.
func (e *Event) WaitFor(d time.Duration) bool {
	if e.s == nil {
		panic("coop: event used before Init")
	}
	t := e.s.mustCurrent("Event.WaitFor")
	if e.flagged {
		e.flagged = false
		return true
	}
	if d <= 0 {
		return false
	}
	t.State = task.Waiting
	e.waiters.Push(t)
	t.WaitQ = &e.waiters
	e.s.timerInsert(t, e.s.now()+e.s.ticksFor(d))
	e.s.pause(t)
	return t.Result == task.Normal
}
