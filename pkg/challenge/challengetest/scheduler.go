// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package challengetest provides a manual clock and scheduler for driving
// challenge.Machine deterministically in tests.
package challengetest

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

// Task is one scheduled callback.
type Task struct {
	s       *Scheduler
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// Stop cancels the task. It reports false if the task already fired or was stopped.
func (t *Task) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Run invokes the callback regardless of state, the way a runtime timer
// that already fired would call it after losing the race to Stop.
func (t *Task) Run() {
	t.f()
}

// At returns the time the task is due.
func (t *Task) At() time.Time {
	return t.at
}

// Stopped reports whether Stop succeeded.
func (t *Task) Stopped() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	return t.stopped
}

// Scheduler is a manual challenge.Scheduler with its own clock.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*Task
}

var _ challenge.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the manual clock.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.now
}

// AfterFunc schedules f at Now()+d.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) challenge.Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	task := &Task{s: s, at: s.now.Add(d), seq: s.seq, f: f}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves the clock forward by d, running due callbacks in deadline
// order. Callbacks run without the scheduler lock and may schedule more work.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		task := s.nextDue(target)
		if task == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		task.fired = true
		if task.at.After(s.now) {
			s.now = task.at
		}
		s.mu.Unlock()

		task.f()
	}
}

// Pending returns the tasks that have neither fired nor been stopped.
func (s *Scheduler) Pending() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Task
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// Last returns the most recently scheduled task.
func (s *Scheduler) Last() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

func (s *Scheduler) nextDue(target time.Time) *Task {
	var due []*Task
	for _, t := range s.tasks {
		if !t.fired && !t.stopped && !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}

// Recorder is a challenge.Sink that keeps every published event.
type Recorder struct {
	mu     sync.Mutex
	events []challenge.Event
}

var _ challenge.Sink = (*Recorder)(nil)

// Publish records events.
func (r *Recorder) Publish(events ...challenge.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, events...)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []challenge.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]challenge.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []challenge.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]challenge.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}

// NewMachine builds a machine on a manual scheduler and recorder with
// sequential session ids.
func NewMachine(start time.Time, opts ...challenge.Option) (*challenge.Machine, *Scheduler, *Recorder) {
	sched := NewScheduler(start)
	rec := &Recorder{}
	n := 0
	base := []challenge.Option{
		challenge.WithScheduler(sched),
		challenge.WithClock(sched.Now),
		challenge.WithSink(rec),
		challenge.WithSessionIDs(func() string {
			n++
			return "session-" + strconv.Itoa(n)
		}),
	}
	return challenge.NewMachine(append(base, opts...)...), sched, rec
}
