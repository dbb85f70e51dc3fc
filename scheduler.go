package coop

import (
	"io"
	"time"

	"github.com/coopkit/coop/internal/task"
)

// Task is the handle returned by Spawn. The scheduler holds only intrusive,
// non-owning references to it; once joined and unreferenced it is ordinary
// garbage.
type Task = task.Task

// Scheduler multiplexes tasks over a single running context. All methods
// except Post must be called from that context: either from the goroutine
// that calls Run, or from one of the scheduler's own tasks. A Scheduler is
// not reentrant across OS threads.
type Scheduler struct {
	clock   Clock
	done    task.Semaphore
	current *task.Task
	main    *task.Task
	runq    task.Queue
	timerq  *task.Task
	all     *task.Task
	running bool
	closed  bool
	nextID  uintptr

	postMu task.PMutex
	posted []func()

	traceW io.Writer
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithClock replaces the default portable clock. The caller keeps ownership
// of the clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// New initializes a scheduler. Nothing runs until Run is called.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: NewClock(),
		done:  task.NewSemaphore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run designates main as the main task and drives the dispatch loop on the
// calling goroutine. It returns once the main task has exited and no task
// is runnable; tasks still waiting at that point stay parked until Close.
func (s *Scheduler) Run(main func()) {
	if s.running {
		panic("coop: Run called reentrantly")
	}
	if s.closed {
		panic("coop: Run on a closed scheduler")
	}
	s.running = true
	s.main = s.Spawn(main)
	s.loop()
	s.main = nil
	s.running = false
}

// Spawn creates a task running fn and places it at the tail of the run
// queue. It may be called before Run or from any running task.
func (s *Scheduler) Spawn(fn func()) *Task {
	if s.closed {
		panic("coop: Spawn on a closed scheduler")
	}
	t := &task.Task{State: task.Runnable}
	s.nextID++
	t.ID = s.nextID
	t.AllNext = s.all
	s.all = t
	t.Start(fn, func() { s.taskExited(t) })
	s.runq.Push(t)
	s.tracef(traceSpawn, "spawn #%d", t.ID)
	return t
}

// Yield places the current task behind all runnable peers and reschedules.
func (s *Scheduler) Yield() {
	t := s.mustCurrent("Yield")
	t.State = task.Runnable
	s.runq.Push(t)
	s.pause(t)
}

// Sleep blocks the current task for at least d. A non-positive d returns
// immediately.
func (s *Scheduler) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	t := s.mustCurrent("Sleep")
	t.State = task.Waiting
	s.timerInsert(t, s.now()+s.ticksFor(d))
	s.pause(t)
}

// Join blocks the current task until target has exited. If target is
// already a zombie, Join returns immediately. Join never times out.
func (s *Scheduler) Join(target *Task) {
	t := s.mustCurrent("Join")
	if target == t {
		panic("coop: task joining itself")
	}
	if target.State == task.Zombie {
		return
	}
	t.State = task.Waiting
	target.Joiners.Push(t)
	t.WaitQ = &target.Joiners
	s.pause(t)
}

// Current returns the task executing right now, or nil when the dispatch
// loop itself is running.
func (s *Scheduler) Current() *Task {
	return s.current
}

// Post queues fn to run in the scheduler's context before the next dispatch
// sweep, waking the idle hook if needed. It is the single marshalling point
// for wakeups that originate on other OS threads (I/O completions, signal
// handlers); fn typically sets an Event. Post is safe to call from any
// goroutine.
func (s *Scheduler) Post(fn func()) {
	s.postMu.Lock()
	s.posted = append(s.posted, fn)
	s.postMu.Unlock()
	s.clock.Wake()
}

// Close tears the scheduler down after Run has returned: every task still
// alive is resumed once with a cancelled wait result and unwinds through
// its deferred calls at the suspension point. Close returns when no task
// contexts remain.
func (s *Scheduler) Close() {
	if s.running {
		panic("coop: Close inside Run")
	}
	if s.closed {
		return
	}
	s.closed = true
	for s.all != nil {
		t := s.all
		t.Kill()
		t.State = task.Running
		s.current = t
		t.Resume(&s.done)
		s.current = nil
	}
	s.runq = task.Queue{}
	s.timerq = nil
}

// loop is the dispatch loop. Each sweep drains the external mailbox, moves
// expired timers to the run queue, and resumes the head runnable task; with
// nothing runnable it idles until the next deadline or an external wake.
func (s *Scheduler) loop() {
	for {
		s.drainPosted()
		s.runTimers()
		if t := s.runq.Pop(); t != nil {
			s.resume(t)
			continue
		}
		if s.main.State == task.Zombie {
			return
		}
		if s.timerq != nil {
			dt := Ticks(s.timerq.Deadline) - s.now()
			if dt > 0 {
				s.clock.Idle(durationOf(dt, s.clock.TicksPerSecond()))
			}
			continue
		}
		// No runnable task and no pending deadline: block until an
		// external source posts a wakeup.
		s.clock.Idle(-1)
	}
}

func (s *Scheduler) resume(t *task.Task) {
	t.State = task.Running
	s.current = t
	s.tracef(traceRun, "resume #%d", t.ID)
	t.Resume(&s.done)
	s.current = nil
}

func (s *Scheduler) pause(t *task.Task) {
	t.Pause(&s.done)
}

// ready moves a woken task to the run queue. The caller must have unlinked
// it from its wait structure already; ready cancels a pending timer so the
// losing wakeup is a no-op.
func (s *Scheduler) ready(t *task.Task, r task.WaitResult) {
	if t.OnTimer {
		s.timerRemove(t)
	}
	t.Result = r
	t.State = task.Runnable
	s.runq.Push(t)
}

// taskExited runs as the final act of a task's context: mark it a zombie,
// release the joiners, and hand control back to the dispatch loop.
func (s *Scheduler) taskExited(t *task.Task) {
	t.State = task.Zombie
	for j := t.Joiners.Pop(); j != nil; j = t.Joiners.Pop() {
		j.WaitQ = nil
		s.ready(j, task.Normal)
	}
	s.allRemove(t)
	s.tracef(traceExit, "exit #%d", t.ID)
	s.done.Post()
}

func (s *Scheduler) allRemove(t *task.Task) {
	for q := &s.all; *q != nil; q = &(*q).AllNext {
		if *q == t {
			*q = t.AllNext
			t.AllNext = nil
			return
		}
	}
}

func (s *Scheduler) drainPosted() {
	s.postMu.Lock()
	fns := s.posted
	s.posted = nil
	s.postMu.Unlock()
	for _, fn := range fns {
		s.tracef(tracePost, "post")
		fn()
	}
}

func (s *Scheduler) mustCurrent(op string) *task.Task {
	if s.current == nil {
		panic("coop: " + op + " called outside a running task")
	}
	return s.current
}

func (s *Scheduler) now() Ticks {
	return s.clock.Ticks()
}

func (s *Scheduler) ticksFor(d time.Duration) Ticks {
	return ticksIn(d, s.clock.TicksPerSecond())
}
