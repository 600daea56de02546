// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/challenge/challengetest"
)

func startSession(t *testing.T, m *challenge.Machine, startIn, duration int) {
	t.Helper()
	if _, err := m.StartSession(challenge.SessionConfig{StartInMinutes: startIn, DurationMinutes: duration}); err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
}

func mustJoin(t *testing.T, m *challenge.Machine, identity, text string) {
	t.Helper()
	if _, err := m.Join(identity, text); err != nil {
		t.Fatalf("Failed to join %s: %v", identity, err)
	}
}

func eventTypes(events []challenge.Event) []challenge.EventType {
	out := make([]challenge.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func scoreboardOf(t *testing.T, e challenge.Event) challenge.ScoreboardReadyPayload {
	t.Helper()
	if e.Type != challenge.EventScoreboardReady {
		t.Fatalf("Expected scoreboard event, got %s", e.Type)
	}
	payload, ok := e.Payload.(challenge.ScoreboardReadyPayload)
	if !ok {
		t.Fatalf("Expected ScoreboardReadyPayload, got %T", e.Payload)
	}
	return payload
}

func TestMachine_StartSession(t *testing.T) {
	m, _, rec := challengetest.NewMachine(epoch)

	events, err := m.StartSession(challenge.SessionConfig{StartInMinutes: 2, DurationMinutes: 20})
	if err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	if len(events) != 1 || events[0].Type != challenge.EventSessionScheduled {
		t.Fatalf("Expected one scheduled event, got %v", eventTypes(events))
	}
	payload := events[0].Payload.(challenge.SessionScheduledPayload)
	if payload.StartInMinutes != 2 || payload.DurationMinutes != 20 {
		t.Errorf("Unexpected payload %+v", payload)
	}
	if events[0].SessionID != "session-1" || events[0].Trigger != challenge.TriggerCommand {
		t.Errorf("Unexpected envelope %+v", events[0])
	}

	snap := m.Snapshot()
	if snap.Phase != challenge.PhaseCountdown {
		t.Errorf("Expected countdown, got %s", snap.Phase)
	}
	if !snap.CountdownDeadline.Equal(epoch.Add(2 * time.Minute)) {
		t.Errorf("Unexpected countdown deadline %v", snap.CountdownDeadline)
	}
	if !snap.ActiveDeadline.Equal(epoch.Add(22 * time.Minute)) {
		t.Errorf("Unexpected planned active deadline %v", snap.ActiveDeadline)
	}
	if !snap.TimerArmed {
		t.Error("Expected timer armed")
	}
	if !reflect.DeepEqual(rec.Events(), events) {
		t.Error("Expected sink to receive the returned events")
	}
}

func TestMachine_StartWhileActiveLeavesStateUnchanged(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "pg 3")

	before := m.Snapshot()
	pending := len(sched.Pending())
	recorded := len(rec.Events())

	events, err := m.StartSession(challenge.SessionConfig{StartInMinutes: 5, DurationMinutes: 5})
	if !errors.Is(err, challenge.ErrAlreadyActive) {
		t.Fatalf("Expected ErrAlreadyActive, got %v", err)
	}
	if events != nil {
		t.Errorf("Expected no events, got %v", eventTypes(events))
	}
	if !reflect.DeepEqual(m.Snapshot(), before) {
		t.Errorf("Expected unchanged state, got %+v", m.Snapshot())
	}
	if len(sched.Pending()) != pending {
		t.Errorf("Expected no new timer, got %d pending", len(sched.Pending()))
	}
	if len(rec.Events()) != recorded {
		t.Error("Expected nothing published")
	}

	// also rejected in every later phase
	sched.Advance(time.Minute)
	if _, err := m.StartSession(challenge.SessionConfig{}); !errors.Is(err, challenge.ErrAlreadyActive) {
		t.Errorf("Expected ErrAlreadyActive while active, got %v", err)
	}
	sched.Advance(30 * time.Minute)
	if _, err := m.StartSession(challenge.SessionConfig{}); !errors.Is(err, challenge.ErrAlreadyActive) {
		t.Errorf("Expected ErrAlreadyActive in grace window, got %v", err)
	}
}

func TestMachine_FullLifecycleByTimer(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "pg: 10")
	mustJoin(t, m, "bob", "")

	sched.Advance(time.Minute)
	if phase := m.Snapshot().Phase; phase != challenge.PhaseActive {
		t.Fatalf("Expected active, got %s", phase)
	}

	last := rec.Events()[len(rec.Events())-1]
	if last.Type != challenge.EventSessionStarted || last.Trigger != challenge.TriggerTimer {
		t.Fatalf("Expected timer-triggered start, got %+v", last)
	}
	started := last.Payload.(challenge.SessionStartedPayload)
	if want := []string{"alice", "bob"}; !reflect.DeepEqual(started.Participants, want) {
		t.Errorf("Expected participants %v, got %v", want, started.Participants)
	}

	if _, err := m.UpdateProgress("alice", "pg 25"); err != nil {
		t.Fatalf("Failed to update progress: %v", err)
	}

	sched.Advance(30 * time.Minute)
	snap := m.Snapshot()
	if snap.Phase != challenge.PhaseAwaitingFinalSubmission {
		t.Fatalf("Expected grace window, got %s", snap.Phase)
	}
	if !snap.SubmissionDeadline.Equal(epoch.Add(34 * time.Minute)) {
		t.Errorf("Unexpected submission deadline %v", snap.SubmissionDeadline)
	}

	// bob never submits, so the grace timer decides
	sched.Advance(3 * time.Minute)

	snap = m.Snapshot()
	if snap.Phase != challenge.PhaseInactive {
		t.Fatalf("Expected inactive, got %s", snap.Phase)
	}
	if len(snap.Participants) != 0 || snap.TimerArmed {
		t.Errorf("Expected cleared state, got %+v", snap)
	}

	want := []challenge.EventType{
		challenge.EventSessionScheduled,
		challenge.EventParticipantJoined,
		challenge.EventParticipantJoined,
		challenge.EventSessionStarted,
		challenge.EventProgressUpdated,
		challenge.EventSessionEnded,
		challenge.EventScoreboardReady,
	}
	if got := rec.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected events %v, got %v", want, got)
	}

	board := scoreboardOf(t, rec.Events()[6])
	if board.Entries[0].Identity != "alice" || board.Entries[0].Delta != 15 {
		t.Errorf("Expected alice first with 15, got %+v", board.Entries[0])
	}
	if board.Entries[1].Identity != "bob" || board.Entries[1].Delta != 0 {
		t.Errorf("Expected bob second with 0, got %+v", board.Entries[1])
	}
	if rec.Events()[6].SessionID != "session-1" {
		t.Errorf("Expected scoreboard tagged with session id, got %q", rec.Events()[6].SessionID)
	}
}

func TestMachine_SkipCountdownRecomputesActiveDeadline(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)
	startSession(t, m, 10, 30)

	sched.Advance(2 * time.Minute)
	events, err := m.SkipPhase()
	if err != nil {
		t.Fatalf("Failed to skip: %v", err)
	}
	if len(events) != 1 || events[0].Type != challenge.EventSessionStarted {
		t.Fatalf("Expected start event, got %v", eventTypes(events))
	}

	snap := m.Snapshot()
	if snap.Phase != challenge.PhaseActive {
		t.Fatalf("Expected active, got %s", snap.Phase)
	}
	want := epoch.Add(32 * time.Minute)
	if !snap.ActiveDeadline.Equal(want) {
		t.Errorf("Expected active deadline %v, got %v", want, snap.ActiveDeadline)
	}

	// the old countdown deadline passes without a second activation
	sched.Advance(8 * time.Minute)
	if snap := m.Snapshot(); snap.Phase != challenge.PhaseActive {
		t.Errorf("Expected still active, got %s", snap.Phase)
	}
	if len(sched.Pending()) != 1 {
		t.Errorf("Expected exactly one live timer, got %d", len(sched.Pending()))
	}

	sched.Advance(22 * time.Minute)
	if snap := m.Snapshot(); snap.Phase != challenge.PhaseInactive {
		t.Errorf("Expected empty session to finish at the recomputed deadline, got %s", snap.Phase)
	}
}

func TestMachine_StaleTimerAfterSkipIsIgnored(t *testing.T) {
	var violations []error
	m, sched, rec := challengetest.NewMachine(epoch, challenge.WithViolationHandler(func(err error) {
		violations = append(violations, err)
	}))

	startSession(t, m, 1, 30)
	countdown := sched.Last()

	if _, err := m.SkipPhase(); err != nil {
		t.Fatalf("Failed to skip: %v", err)
	}
	before := m.Snapshot()
	recorded := len(rec.Events())

	// the runtime already started the countdown callback before Stop won
	countdown.Run()

	if !reflect.DeepEqual(m.Snapshot(), before) {
		t.Errorf("Expected stale firing to be ignored, got %+v", m.Snapshot())
	}
	if len(rec.Events()) != recorded {
		t.Errorf("Expected no events from stale firing, got %v", rec.Types()[recorded:])
	}
	if len(violations) != 0 {
		t.Errorf("Expected no violations, got %v", violations)
	}
}

func TestMachine_SkipActiveShortCircuitsWhenAllSubmitted(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "pg 1")
	mustJoin(t, m, "bob", "pg 2")
	sched.Advance(time.Minute)

	if _, err := m.UpdateProgress("alice", "pg 9"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if _, err := m.UpdateProgress("bob", "pg 4"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	events, err := m.SkipPhase()
	if err != nil {
		t.Fatalf("Failed to skip: %v", err)
	}

	want := []challenge.EventType{challenge.EventSessionEnded, challenge.EventScoreboardReady}
	if got := eventTypes(events); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if m.Snapshot().Phase != challenge.PhaseInactive {
		t.Errorf("Expected inactive, got %s", m.Snapshot().Phase)
	}
	if len(sched.Pending()) != 0 {
		t.Errorf("Expected no grace timer, got %d pending", len(sched.Pending()))
	}

	board := scoreboardOf(t, events[1])
	if want := []string{"alice"}; !reflect.DeepEqual(board.Winners, want) {
		t.Errorf("Expected winners %v, got %v", want, board.Winners)
	}
}

func TestMachine_LastSubmissionInGraceFinishes(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	startSession(t, m, 0, 10)
	mustJoin(t, m, "alice", "")
	mustJoin(t, m, "bob", "")
	sched.Advance(0)
	sched.Advance(10 * time.Minute)

	if m.Snapshot().Phase != challenge.PhaseAwaitingFinalSubmission {
		t.Fatalf("Expected grace window, got %s", m.Snapshot().Phase)
	}
	grace := sched.Last()

	events, err := m.UpdateProgress("alice", "5")
	if err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if got := eventTypes(events); !reflect.DeepEqual(got, []challenge.EventType{challenge.EventProgressUpdated}) {
		t.Fatalf("Expected only progress event, got %v", got)
	}
	if !events[0].Payload.(challenge.ProgressUpdatedPayload).Final {
		t.Error("Expected grace-window update to be marked final")
	}

	events, err = m.UpdateProgress("bob", "7")
	if err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	want := []challenge.EventType{challenge.EventProgressUpdated, challenge.EventScoreboardReady}
	if got := eventTypes(events); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if !grace.Stopped() {
		t.Error("Expected grace timer cancelled")
	}

	recorded := len(rec.Events())
	sched.Advance(3 * time.Minute)
	if len(rec.Events()) != recorded {
		t.Error("Expected no events after early finish")
	}

	board := scoreboardOf(t, events[1])
	if want := []string{"bob"}; !reflect.DeepEqual(board.Winners, want) {
		t.Errorf("Expected winners %v, got %v", want, board.Winners)
	}
}

func TestMachine_EmptySessionFinishesImmediately(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 1)
	sched.Advance(2 * time.Minute)

	want := []challenge.EventType{
		challenge.EventSessionScheduled,
		challenge.EventSessionStarted,
		challenge.EventSessionEnded,
		challenge.EventScoreboardReady,
	}
	if got := rec.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if board := scoreboardOf(t, rec.Events()[3]); !board.Empty() {
		t.Errorf("Expected empty scoreboard, got %+v", board)
	}
	if len(sched.Pending()) != 0 {
		t.Errorf("Expected no pending timers, got %d", len(sched.Pending()))
	}
}

func TestMachine_EndSessionRoundTrip(t *testing.T) {
	phases := []struct {
		name    string
		advance []time.Duration
	}{
		{name: "countdown"},
		{name: "active", advance: []time.Duration{time.Minute}},
		{name: "grace", advance: []time.Duration{time.Minute, 30 * time.Minute}},
	}

	for _, tt := range phases {
		t.Run(tt.name, func(t *testing.T) {
			m, sched, rec := challengetest.NewMachine(epoch)
			startSession(t, m, 1, 30)
			mustJoin(t, m, "alice", "")
			for _, d := range tt.advance {
				sched.Advance(d)
			}

			events, err := m.EndSession()
			if err != nil {
				t.Fatalf("Failed to end: %v", err)
			}
			if len(events) != 1 || events[0].Type != challenge.EventSessionEndedByOperator {
				t.Fatalf("Expected operator end, got %v", eventTypes(events))
			}

			snap := m.Snapshot()
			if snap.Phase != challenge.PhaseInactive || len(snap.Participants) != 0 || snap.TimerArmed {
				t.Errorf("Expected reset state, got %+v", snap)
			}
			if len(sched.Pending()) != 0 {
				t.Errorf("Expected no live timer, got %d", len(sched.Pending()))
			}

			recorded := len(rec.Events())
			sched.Advance(time.Hour)
			if len(rec.Events()) != recorded {
				t.Errorf("Expected silence after end, got %v", rec.Types()[recorded:])
			}

			if _, err := m.EndSession(); !errors.Is(err, challenge.ErrNoActiveSession) {
				t.Errorf("Expected ErrNoActiveSession, got %v", err)
			}

			// a new session starts from a clean slate
			startSession(t, m, 1, 30)
			if got := m.ListParticipants(); len(got) != 0 {
				t.Errorf("Expected empty registry, got %v", got)
			}
		})
	}
}

func TestMachine_JoinValidation(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)

	if _, err := m.Join("alice", ""); !errors.Is(err, challenge.ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession, got %v", err)
	}

	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "pg12")

	if _, err := m.Join("alice", ""); !errors.Is(err, challenge.ErrAlreadyJoined) {
		t.Errorf("Expected ErrAlreadyJoined, got %v", err)
	}
	if _, err := m.Join("bob", "pg: abc"); !errors.Is(err, challenge.ErrInvalidProgressValue) {
		t.Errorf("Expected ErrInvalidProgressValue, got %v", err)
	}
	if got := m.ListParticipants(); !reflect.DeepEqual(got, []string{"alice"}) {
		t.Errorf("Expected invalid join to leave registry alone, got %v", got)
	}

	snap := m.Snapshot()
	if snap.Participants[0].InitialProgress != 12 || snap.Participants[0].CurrentProgress != 12 {
		t.Errorf("Expected progress 12, got %+v", snap.Participants[0])
	}

	// late joins are accepted while the window is open
	sched.Advance(time.Minute)
	mustJoin(t, m, "bob", "")

	sched.Advance(30 * time.Minute)
	if _, err := m.Join("carol", ""); !errors.Is(err, challenge.ErrChallengeOver) {
		t.Errorf("Expected ErrChallengeOver in grace window, got %v", err)
	}
}

func TestMachine_Drop(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)

	if _, err := m.Drop("alice", false); !errors.Is(err, challenge.ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession, got %v", err)
	}

	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "")
	mustJoin(t, m, "bob", "")
	mustJoin(t, m, "carol", "")

	if _, err := m.Drop("dave", false); !errors.Is(err, challenge.ErrNotAJoinedParticipant) {
		t.Errorf("Expected ErrNotAJoinedParticipant, got %v", err)
	}

	events, err := m.Drop("alice", false)
	if err != nil || len(events) != 1 || events[0].Type != challenge.EventParticipantDropped {
		t.Fatalf("Expected dropped event, got %v (%v)", eventTypes(events), err)
	}

	recorded := len(rec.Events())
	events, err = m.Drop("bob", true)
	if err != nil {
		t.Fatalf("Failed quiet drop: %v", err)
	}
	if len(events) != 0 || len(rec.Events()) != recorded {
		t.Errorf("Expected quiet drop to emit nothing, got %v", eventTypes(events))
	}

	if got := m.ListParticipants(); !reflect.DeepEqual(got, []string{"carol"}) {
		t.Errorf("Expected [carol], got %v", got)
	}

	sched.Advance(31 * time.Minute)
	if _, err := m.Drop("carol", false); !errors.Is(err, challenge.ErrChallengeOver) {
		t.Errorf("Expected ErrChallengeOver in grace window, got %v", err)
	}
}

func TestMachine_UpdateProgressValidation(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)

	if _, err := m.UpdateProgress("alice", "3"); !errors.Is(err, challenge.ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession, got %v", err)
	}

	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "")

	if _, err := m.UpdateProgress("alice", "3"); !errors.Is(err, challenge.ErrChallengeNotStarted) {
		t.Errorf("Expected ErrChallengeNotStarted, got %v", err)
	}

	sched.Advance(time.Minute)

	if _, err := m.UpdateProgress("bob", "3"); !errors.Is(err, challenge.ErrNotAJoinedParticipant) {
		t.Errorf("Expected ErrNotAJoinedParticipant, got %v", err)
	}
	if _, err := m.UpdateProgress("alice", "three"); !errors.Is(err, challenge.ErrInvalidProgressValue) {
		t.Errorf("Expected ErrInvalidProgressValue, got %v", err)
	}
	if p := m.Snapshot().Participants[0]; p.HasSubmittedFinal || p.CurrentProgress != 0 {
		t.Errorf("Expected invalid update to leave record alone, got %+v", p)
	}

	// progress may go down; nothing enforces monotonic pages
	if _, err := m.UpdateProgress("alice", "8"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if _, err := m.UpdateProgress("alice", "2"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if p := m.Snapshot().Participants[0]; p.CurrentProgress != 2 || !p.HasSubmittedFinal {
		t.Errorf("Expected progress 2 and submitted, got %+v", p)
	}
}

func TestMachine_SkipPhaseValidation(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)

	if _, err := m.SkipPhase(); !errors.Is(err, challenge.ErrNothingToSkip) {
		t.Errorf("Expected ErrNothingToSkip when inactive, got %v", err)
	}

	startSession(t, m, 1, 30)
	mustJoin(t, m, "alice", "")
	sched.Advance(31 * time.Minute)

	if _, err := m.SkipPhase(); !errors.Is(err, challenge.ErrNothingToSkip) {
		t.Errorf("Expected ErrNothingToSkip in grace window, got %v", err)
	}
	if m.Snapshot().Phase != challenge.PhaseAwaitingFinalSubmission {
		t.Errorf("Expected grace window to continue, got %s", m.Snapshot().Phase)
	}
}

func TestMachine_QueryTimer(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)

	if _, err := m.QueryTimer(); !errors.Is(err, challenge.ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession, got %v", err)
	}

	startSession(t, m, 5, 30)
	mustJoin(t, m, "alice", "")

	tests := []struct {
		advance   time.Duration
		phase     challenge.Phase
		remaining time.Duration
	}{
		{advance: 90 * time.Second, phase: challenge.PhaseCountdown, remaining: 210 * time.Second},
		{advance: 210 * time.Second, phase: challenge.PhaseActive, remaining: 30 * time.Minute},
		{advance: 29 * time.Minute, phase: challenge.PhaseActive, remaining: time.Minute},
		{advance: time.Minute, phase: challenge.PhaseAwaitingFinalSubmission, remaining: 3 * time.Minute},
		{advance: 2 * time.Minute, phase: challenge.PhaseAwaitingFinalSubmission, remaining: time.Minute},
	}

	for i, tt := range tests {
		sched.Advance(tt.advance)
		status, err := m.QueryTimer()
		if err != nil {
			t.Fatalf("step %d: unexpected error %v", i, err)
		}
		if status.Phase != tt.phase || status.Remaining != tt.remaining {
			t.Errorf("step %d: expected %s with %v left, got %s with %v", i, tt.phase, tt.remaining, status.Phase, status.Remaining)
		}
	}
}

func TestMachine_QueryTimerClampsAtZero(t *testing.T) {
	// a clock that runs ahead of the scheduler, as when a callback is late
	sched := challengetest.NewScheduler(epoch)
	skew := time.Duration(0)
	m := challenge.NewMachine(
		challenge.WithScheduler(sched),
		challenge.WithClock(func() time.Time { return sched.Now().Add(skew) }),
	)
	startSession(t, m, 1, 30)

	skew = 2 * time.Minute
	status, err := m.QueryTimer()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status.Remaining != 0 {
		t.Errorf("Expected zero remaining, got %v", status.Remaining)
	}
}

func TestMachine_Close(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 30)
	countdown := sched.Last()

	m.Close()
	countdown.Run()
	sched.Advance(time.Hour)

	if m.Snapshot().Phase != challenge.PhaseCountdown {
		t.Errorf("Expected closed machine not to advance, got %s", m.Snapshot().Phase)
	}
	if len(rec.Events()) != 1 {
		t.Errorf("Expected only the scheduled event, got %v", rec.Types())
	}
}

func TestMachine_ClosedRefusesNewSession(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	m.Close()

	if _, err := m.StartSession(challenge.SessionConfig{StartInMinutes: 1, DurationMinutes: 1}); !errors.Is(err, challenge.ErrShuttingDown) {
		t.Fatalf("Expected ErrShuttingDown, got %v", err)
	}
	sched.Advance(10 * time.Minute)

	snap := m.Snapshot()
	if snap.Phase != challenge.PhaseInactive || snap.TimerArmed {
		t.Errorf("Expected inactive with no timer, got phase=%s timerArmed=%v", snap.Phase, snap.TimerArmed)
	}
	if len(sched.Pending()) != 0 || len(rec.Events()) != 0 {
		t.Errorf("Expected no timers or events, got %d timers and %v", len(sched.Pending()), rec.Types())
	}
}

func TestMachine_ClosedRefusesSkip(t *testing.T) {
	m, _, _ := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 30)
	m.Close()

	if _, err := m.SkipPhase(); !errors.Is(err, challenge.ErrShuttingDown) {
		t.Fatalf("Expected ErrShuttingDown, got %v", err)
	}
	if snap := m.Snapshot(); snap.Phase != challenge.PhaseCountdown || snap.TimerArmed {
		t.Errorf("Expected countdown with no timer, got phase=%s timerArmed=%v", snap.Phase, snap.TimerArmed)
	}
}

func TestMachine_DeadlinesOnlyForCurrentPhase(t *testing.T) {
	m, sched, _ := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 5)
	mustJoin(t, m, "alice", "")

	sched.Advance(time.Minute)
	snap := m.Snapshot()
	if !snap.CountdownDeadline.IsZero() {
		t.Errorf("Expected no countdown deadline while active, got %v", snap.CountdownDeadline)
	}
	if !snap.ActiveDeadline.Equal(epoch.Add(6 * time.Minute)) {
		t.Errorf("Unexpected active deadline %v", snap.ActiveDeadline)
	}

	sched.Advance(5 * time.Minute)
	snap = m.Snapshot()
	if snap.Phase != challenge.PhaseAwaitingFinalSubmission {
		t.Fatalf("Expected grace window, got %s", snap.Phase)
	}
	if !snap.CountdownDeadline.IsZero() || !snap.ActiveDeadline.IsZero() {
		t.Errorf("Expected only the submission deadline, got countdown=%v active=%v", snap.CountdownDeadline, snap.ActiveDeadline)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	for _, key := range []string{"countdownDeadline", "activeDeadline"} {
		if _, ok := fields[key]; ok {
			t.Errorf("Expected %s to be absent, got %v", key, fields[key])
		}
	}
	if _, ok := fields["submissionDeadline"]; !ok {
		t.Errorf("Expected submissionDeadline in %s", raw)
	}
	if fields["phase"] != string(challenge.PhaseAwaitingFinalSubmission) {
		t.Errorf("Expected phase in JSON, got %v", fields["phase"])
	}
}

func TestMachine_ConcurrentJoinsAndTimer(t *testing.T) {
	m, sched, rec := challengetest.NewMachine(epoch)
	startSession(t, m, 1, 30)

	const readers = 50
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("reader-%d", i)
			_, _ = m.Join(id, "")
			_, _ = m.Join(id, "")
			_, _ = m.UpdateProgress(id, fmt.Sprintf("pg %d", i))
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Advance(time.Minute)
	}()
	wg.Wait()

	snap := m.Snapshot()
	if snap.Phase != challenge.PhaseActive {
		t.Fatalf("Expected active, got %s", snap.Phase)
	}

	seen := make(map[string]bool)
	for _, p := range snap.Participants {
		if seen[p.Identity] {
			t.Fatalf("Duplicate participant %s", p.Identity)
		}
		seen[p.Identity] = true
	}
	if len(seen) != readers {
		t.Errorf("Expected %d participants, got %d", readers, len(seen))
	}

	var started int
	for _, typ := range rec.Types() {
		if typ == challenge.EventSessionStarted {
			started++
		}
	}
	if started != 1 {
		t.Errorf("Expected one activation, got %d", started)
	}
}
