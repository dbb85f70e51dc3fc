// Package coop is a stackful cooperative multitasking runtime. Long-running
// logical activities are written as ordinary straight-line functions that
// occasionally pause (to sleep, wait for an event, acquire a lock), while a
// single underlying context multiplexes them without preemption.
//
// A task keeps running until it calls a suspending operation: Yield, Sleep,
// Join, a contended Mutex.Lock, Event.Wait, Event.WaitFor, or Cond.Wait.
// Nothing else suspends, so data shared between tasks of one scheduler
// needs no locking between suspension points.
//
// Wakeups are FIFO per wait structure: mutex waiters, event waiters, and
// joiners resume in arrival order, and timers expiring together resume in
// deadline order with ties broken by insertion. A yielding task is placed
// behind all currently runnable peers.
//
// Each task's context is a parked goroutine handed a binary semaphore;
// exactly one context (a task or the dispatch loop) runs at any instant.
// External event sources running on other OS threads marshal their wakeups
// through Scheduler.Post, which is the only method safe to call from
// outside the scheduler's context.
package coop

import "github.com/coopkit/coop/internal/task"

// State is the scheduling state of a task.
type State = task.State

const (
	Runnable = task.Runnable
	Running  = task.Running
	Waiting  = task.Waiting
	Zombie   = task.Zombie
)
