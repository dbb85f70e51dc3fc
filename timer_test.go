package coop

import (
	"testing"

	"github.com/coopkit/coop/internal/task"
)

func timerOrder(s *Scheduler) []*task.Task {
	var order []*task.Task
	for t := s.timerq; t != nil; t = t.TimerNext {
		order = append(order, t)
	}
	return order
}

func TestTimerInsertSorted(t *testing.T) {
	s := New(WithClock(&fakeClock{}))
	a, b, c := &task.Task{}, &task.Task{}, &task.Task{}
	s.timerInsert(a, 30)
	s.timerInsert(b, 10)
	s.timerInsert(c, 20)
	order := timerOrder(s)
	want := []*task.Task{b, c, a}
	if len(order) != 3 {
		t.Fatalf("timer queue holds %d entries, want 3", len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("timer queue order %v, want [b c a]", order)
		}
	}
}

func TestTimerEqualDeadlinesKeepInsertionOrder(t *testing.T) {
	s := New(WithClock(&fakeClock{}))
	a, b, c := &task.Task{}, &task.Task{}, &task.Task{}
	s.timerInsert(a, 10)
	s.timerInsert(b, 10)
	s.timerInsert(c, 10)
	order := timerOrder(s)
	want := []*task.Task{a, b, c}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("equal-deadline order %v, want [a b c]", order)
		}
	}
}

func TestTimerRemove(t *testing.T) {
	s := New(WithClock(&fakeClock{}))
	a, b, c := &task.Task{}, &task.Task{}, &task.Task{}
	s.timerInsert(a, 10)
	s.timerInsert(b, 20)
	s.timerInsert(c, 30)
	s.timerRemove(b)
	if b.OnTimer || b.TimerNext != nil {
		t.Error("removed entry keeps timer linkage")
	}
	order := timerOrder(s)
	if len(order) != 2 || order[0] != a || order[1] != c {
		t.Fatalf("timer queue after remove = %v, want [a c]", order)
	}
}

func TestRunTimersPopsAllExpired(t *testing.T) {
	clk := &fakeClock{}
	s := New(WithClock(clk))
	a, b, c := &task.Task{}, &task.Task{}, &task.Task{}
	var wq task.Queue
	wq.Push(b)
	b.WaitQ = &wq // b is also parked on a wait queue
	s.timerInsert(a, 10)
	s.timerInsert(b, 15)
	s.timerInsert(c, 30)

	clk.now = 15
	s.runTimers()

	if got := s.runq.Pop(); got != a {
		t.Errorf("first expired = %p, want a", got)
	}
	if got := s.runq.Pop(); got != b {
		t.Errorf("second expired = %p, want b", got)
	}
	if got := s.runq.Pop(); got != nil {
		t.Errorf("unexpired entry %p moved to the run queue", got)
	}
	if s.timerq != c {
		t.Error("unexpired entry not left at the head of the timer queue")
	}
	if a.Result != task.TimedOut || b.Result != task.TimedOut {
		t.Error("expired entries not stamped as timed out")
	}
	if b.WaitQ != nil || !wq.Empty() {
		t.Error("expiry did not unlink the task from its wait queue")
	}
}
