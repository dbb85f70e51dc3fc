package coop

import "github.com/coopkit/coop/internal/task"

// Mutex is a mutual-exclusion lock with FIFO waiters and direct handoff:
// an unlock with waiters present transfers ownership to the head waiter
// instead of clearing the owner and letting the wakers race. The storage is
// caller-owned; initialize in place with Init.
type Mutex struct {
	s       *Scheduler
	owner   *task.Task
	waiters task.Queue
}

// Init binds the mutex to a scheduler. It must be called before any other
// method.
func (m *Mutex) Init(s *Scheduler) {
	m.s = s
}

// Lock acquires the mutex, parking the current task at the tail of the
// waiter queue if it is held. When Lock returns, the current task is the
// owner; there is no retry loop.
func (m *Mutex) Lock() {
	if m.s == nil {
		panic("coop: mutex used before Init")
	}
	t := m.s.mustCurrent("Mutex.Lock")
	if m.owner == nil {
		m.owner = t
		return
	}
	if m.owner == t {
		panic("coop: recursive mutex lock")
	}
	t.State = task.Waiting
	m.waiters.Push(t)
	t.WaitQ = &m.waiters
	m.s.pause(t)
	// Ownership was handed over before the wakeup; nothing to re-check.
}

// Unlock releases the mutex. With waiters present it hands ownership to the
// head waiter and marks it runnable; control is not yielded, the caller
// runs on. Unlocking a mutex not owned by the current task panics.
func (m *Mutex) Unlock() {
	if m.s == nil {
		panic("coop: mutex used before Init")
	}
	t := m.s.mustCurrent("Mutex.Unlock")
	if m.owner != t {
		panic("coop: unlock of mutex not owned by the current task")
	}
	next := m.waiters.Pop()
	if next == nil {
		m.owner = nil
		return
	}
	next.WaitQ = nil
	m.owner = next
	m.s.ready(next, task.Normal)
}

// Locker is the subset of Mutex used by Cond.
type Locker interface {
	Lock()
	Unlock()
}
