// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func()) Stopper

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Stopper {
	return fn(d, f)
}

// RealScheduler schedules callbacks with time.AfterFunc.
var RealScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
})

// TimerHandle identifies one arming of a PhaseTimer. Zero is never issued.
type TimerHandle uint64

// PhaseTimer owns at most one pending phase deadline.
//
// Every arming gets a fresh handle and the callback receives it. The owner
// must call Consume with that handle, while holding the same lock it uses for
// Arm and Cancel, before acting on the firing. Consume returns false for a
// handle that was cancelled or superseded, which makes a late callback from
// the runtime harmless. PhaseTimer has no lock of its own.
type PhaseTimer struct {
	scheduler Scheduler
	now       func() time.Time

	next     TimerHandle
	pending  TimerHandle
	deadline time.Time
	stopper  Stopper
}

// NewPhaseTimer creates a disarmed timer.
func NewPhaseTimer(scheduler Scheduler, now func() time.Time) *PhaseTimer {
	if scheduler == nil {
		scheduler = RealScheduler
	}
	if now == nil {
		now = time.Now
	}
	return &PhaseTimer{
		scheduler: scheduler,
		now:       now,
	}
}

// Arm schedules fire at deadline. A deadline in the past fires as soon as
// the scheduler runs it. Returns ErrTimerAlreadyArmed if a handle is pending.
func (t *PhaseTimer) Arm(deadline time.Time, fire func(TimerHandle)) (TimerHandle, error) {
	if t.pending != 0 {
		return 0, ErrTimerAlreadyArmed
	}

	t.next++
	handle := t.next
	t.pending = handle
	t.deadline = deadline

	delay := deadline.Sub(t.now())
	if delay < 0 {
		delay = 0
	}
	t.stopper = t.scheduler.AfterFunc(delay, func() {
		fire(handle)
	})
	return handle, nil
}

// Cancel disarms the timer if handle is the pending one.
// Stale or already consumed handles are ignored.
func (t *PhaseTimer) Cancel(handle TimerHandle) {
	if handle == 0 || handle != t.pending {
		return
	}
	if t.stopper != nil {
		t.stopper.Stop()
	}
	t.reset()
}

// CancelPending disarms whatever is pending.
func (t *PhaseTimer) CancelPending() {
	t.Cancel(t.pending)
}

// Consume reports whether handle is the pending one and, if so, disarms
// the timer so the caller can act on the firing exactly once.
func (t *PhaseTimer) Consume(handle TimerHandle) bool {
	if handle == 0 || handle != t.pending {
		return false
	}
	t.reset()
	return true
}

// Armed reports whether a firing is pending.
func (t *PhaseTimer) Armed() bool {
	return t.pending != 0
}

// Pending returns the pending handle, zero if disarmed.
func (t *PhaseTimer) Pending() TimerHandle {
	return t.pending
}

// Deadline returns the pending deadline, zero if disarmed.
func (t *PhaseTimer) Deadline() time.Time {
	return t.deadline
}

func (t *PhaseTimer) reset() {
	t.pending = 0
	t.deadline = time.Time{}
	t.stopper = nil
}
