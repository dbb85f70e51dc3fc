package coop

import "github.com/coopkit/coop/internal/task"

// The timer queue is a list sorted by deadline, linked through TimerNext.
// Equal deadlines keep insertion order, so simultaneous expiries wake FIFO.

func (s *Scheduler) timerInsert(t *task.Task, deadline Ticks) {
	t.Deadline = int64(deadline)
	t.OnTimer = true
	q := &s.timerq
	for *q != nil && !tickBefore(deadline, Ticks((*q).Deadline)) {
		q = &(*q).TimerNext
	}
	t.TimerNext = *q
	*q = t
}

func (s *Scheduler) timerRemove(t *task.Task) {
	for q := &s.timerq; *q != nil; q = &(*q).TimerNext {
		if *q == t {
			*q = t.TimerNext
			break
		}
	}
	t.TimerNext = nil
	t.OnTimer = false
}

// runTimers moves every expired entry to the run queue, in queue order,
// unlinking each from whatever wait structure still references it.
func (s *Scheduler) runTimers() {
	if s.timerq == nil {
		return
	}
	now := s.now()
	for s.timerq != nil && !tickBefore(now, Ticks(s.timerq.Deadline)) {
		t := s.timerq
		s.timerq = t.TimerNext
		t.TimerNext = nil
		t.OnTimer = false
		if t.WaitQ != nil {
			t.WaitQ.Remove(t)
			t.WaitQ = nil
		}
		t.Result = task.TimedOut
		t.State = task.Runnable
		s.runq.Push(t)
		s.tracef(traceTimer, "timeout #%d", t.ID)
	}
}
