// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Machine owns the single reading challenge session.
//
// Commands and timer callbacks are serialized by one mutex. Events are
// handed to the Sink before the mutex is released, so the sink observes
// them in the order the transitions happened.
type Machine struct {
	mu sync.Mutex

	policy    Policy
	now       func() time.Time
	timer     *PhaseTimer
	sink      Sink
	newID     func() string
	violation func(error)

	phase              Phase
	sessionID          string
	config             SessionConfig
	scheduledAt        time.Time
	countdownDeadline  time.Time
	activeDeadline     time.Time
	submissionDeadline time.Time
	registry           *Registry
	closed             bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the clock used for deadlines and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithScheduler sets the scheduler backing the phase timer.
func WithScheduler(s Scheduler) Option {
	return func(m *Machine) {
		m.timer = NewPhaseTimer(s, nil)
	}
}

// WithSink sets where emitted events are published.
func WithSink(s Sink) Option {
	return func(m *Machine) {
		m.sink = s
	}
}

// WithPolicy overrides the timing policy.
func WithPolicy(p Policy) Option {
	return func(m *Machine) {
		m.policy = p
	}
}

// WithSessionIDs overrides session id generation.
func WithSessionIDs(newID func() string) Option {
	return func(m *Machine) {
		m.newID = newID
	}
}

// WithViolationHandler sets the handler for internal invariant violations.
// The default logs and panics.
func WithViolationHandler(fn func(error)) Option {
	return func(m *Machine) {
		m.violation = fn
	}
}

// NewMachine creates an Inactive machine.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		policy:    DefaultPolicy(),
		now:       time.Now,
		sink:      discardSink{},
		newID:     uuid.NewString,
		violation: panicOnViolation,
		phase:     PhaseInactive,
		registry:  NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.timer == nil {
		m.timer = NewPhaseTimer(RealScheduler, nil)
	}
	m.timer.now = m.now
	return m
}

func panicOnViolation(err error) {
	logrus.WithError(err).Panic("reading challenge invariant violated")
}

// Policy returns the timing policy in use.
func (m *Machine) Policy() Policy {
	return m.policy
}

// StartSession schedules a new session.
// Returns ErrAlreadyActive unless the machine is Inactive, and ErrShuttingDown
// once the machine is closed.
func (m *Machine) StartSession(cfg SessionConfig) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrShuttingDown
	}
	if m.phase != PhaseInactive {
		return nil, ErrAlreadyActive
	}
	if cfg.StartInMinutes < 0 || cfg.DurationMinutes < 0 {
		return nil, Errorf(CodeInternalInvariant, "negative session config %+v", cfg)
	}

	now := m.now()
	m.sessionID = m.newID()
	m.config = cfg
	m.scheduledAt = now
	m.registry = NewRegistry()
	m.countdownDeadline = now.Add(cfg.StartIn())
	m.activeDeadline = m.countdownDeadline.Add(cfg.Duration())
	m.submissionDeadline = time.Time{}
	m.phase = PhaseCountdown

	events := []Event{m.event(now, TriggerCommand, EventSessionScheduled, SessionScheduledPayload{
		StartInMinutes:  cfg.StartInMinutes,
		DurationMinutes: cfg.DurationMinutes,
		StartsAt:        m.countdownDeadline,
	})}
	m.arm(m.countdownDeadline)

	return m.publish(events), nil
}

// SkipPhase cuts the countdown or the reading window short.
// Returns ErrNothingToSkip when Inactive or in the grace window.
func (m *Machine) SkipPhase() ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.Skippable() {
		return nil, ErrNothingToSkip
	}
	if m.closed {
		return nil, ErrShuttingDown
	}

	m.timer.CancelPending()
	now := m.now()

	var events []Event
	switch m.phase {
	case PhaseCountdown:
		events = m.beginActive(now, TriggerCommand, true)
	case PhaseActive:
		events = m.closeActive(now, TriggerCommand, true)
	}
	return m.publish(events), nil
}

// EndSession stops the session from any non-Inactive phase without a scoreboard.
func (m *Machine) EndSession() ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseInactive {
		return nil, ErrNoActiveSession
	}

	m.timer.CancelPending()
	now := m.now()
	events := []Event{m.event(now, TriggerCommand, EventSessionEndedByOperator, nil)}
	m.reset()

	return m.publish(events), nil
}

// Join registers identity. An empty progressText starts the participant at page 0.
func (m *Machine) Join(identity, progressText string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registrationOpen(); err != nil {
		return nil, err
	}
	if m.registry.Contains(identity) {
		return nil, ErrAlreadyJoined
	}

	initial := 0
	if progressText != "" {
		value, err := ParseProgress(progressText)
		if err != nil {
			return nil, err
		}
		initial = value.Pages
	}

	now := m.now()
	if err := m.registry.Insert(Participant{
		Identity:        identity,
		InitialProgress: initial,
		CurrentProgress: initial,
		JoinedAt:        now,
	}); err != nil {
		m.violation(err)
		return nil, err
	}

	events := []Event{m.event(now, TriggerCommand, EventParticipantJoined, ParticipantJoinedPayload{
		Identity:        identity,
		InitialProgress: initial,
	})}
	return m.publish(events), nil
}

// Drop removes identity. A quiet drop emits no events.
func (m *Machine) Drop(identity string, quiet bool) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registrationOpen(); err != nil {
		return nil, err
	}
	if err := m.registry.Remove(identity); err != nil {
		return nil, ErrNotAJoinedParticipant
	}

	if quiet {
		return nil, nil
	}

	events := []Event{m.event(m.now(), TriggerCommand, EventParticipantDropped, ParticipantDroppedPayload{
		Identity: identity,
	})}
	return m.publish(events), nil
}

// UpdateProgress records the current page of identity and marks the
// submission final. In the grace window the last outstanding submission
// finishes the session within the same call.
func (m *Machine) UpdateProgress(identity, progressText string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseInactive:
		return nil, ErrNoActiveSession
	case PhaseCountdown:
		return nil, ErrChallengeNotStarted
	}
	if !m.registry.Contains(identity) {
		return nil, ErrNotAJoinedParticipant
	}

	value, err := ParseProgress(progressText)
	if err != nil {
		return nil, err
	}

	if err := m.registry.Update(identity, func(p *Participant) {
		p.CurrentProgress = value.Pages
		p.HasSubmittedFinal = true
	}); err != nil {
		m.violation(err)
		return nil, err
	}

	now := m.now()
	events := []Event{m.event(now, TriggerCommand, EventProgressUpdated, ProgressUpdatedPayload{
		Identity:        identity,
		CurrentProgress: value.Pages,
		Final:           m.phase == PhaseAwaitingFinalSubmission,
	})}

	if m.phase == PhaseAwaitingFinalSubmission && m.registry.AllSubmitted() {
		m.timer.CancelPending()
		events = append(events, m.finish(now, TriggerCommand)...)
	}

	return m.publish(events), nil
}

// TimerStatus is the result of QueryTimer.
type TimerStatus struct {
	SessionID string
	Phase     Phase
	Deadline  time.Time
	Remaining time.Duration
}

// QueryTimer returns the time left in the current phase, clamped at zero.
func (m *Machine) QueryTimer() (TimerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deadline time.Time
	switch m.phase {
	case PhaseInactive:
		return TimerStatus{}, ErrNoActiveSession
	case PhaseCountdown:
		deadline = m.countdownDeadline
	case PhaseActive:
		deadline = m.activeDeadline
	case PhaseAwaitingFinalSubmission:
		deadline = m.submissionDeadline
	}

	remaining := deadline.Sub(m.now())
	if remaining < 0 {
		remaining = 0
	}
	return TimerStatus{
		SessionID: m.sessionID,
		Phase:     m.phase,
		Deadline:  deadline,
		Remaining: remaining,
	}, nil
}

// ListParticipants returns identities in registration order.
func (m *Machine) ListParticipants() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.registry.Identities()
}

// ParticipantCount returns the number of registered participants.
func (m *Machine) ParticipantCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.registry.Len()
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Phase              Phase         `json:"phase"`
	SessionID          string        `json:"sessionId,omitempty"`
	Config             SessionConfig `json:"config"`
	ScheduledAt        time.Time     `json:"scheduledAt"`
	CountdownDeadline  time.Time     `json:"countdownDeadline"`
	ActiveDeadline     time.Time     `json:"activeDeadline"`
	SubmissionDeadline time.Time     `json:"submissionDeadline"`
	Participants       []Participant `json:"participants"`
	TimerArmed         bool          `json:"timerArmed"`
}

// MarshalJSON leaves out the deadlines that do not apply to the current phase.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		ScheduledAt        *time.Time `json:"scheduledAt,omitempty"`
		CountdownDeadline  *time.Time `json:"countdownDeadline,omitempty"`
		ActiveDeadline     *time.Time `json:"activeDeadline,omitempty"`
		SubmissionDeadline *time.Time `json:"submissionDeadline,omitempty"`
	}{
		plain:              plain(s),
		ScheduledAt:        optionalTime(s.ScheduledAt),
		CountdownDeadline:  optionalTime(s.CountdownDeadline),
		ActiveDeadline:     optionalTime(s.ActiveDeadline),
		SubmissionDeadline: optionalTime(s.SubmissionDeadline),
	})
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Snapshot returns the current session state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Phase:              m.phase,
		SessionID:          m.sessionID,
		Config:             m.config,
		ScheduledAt:        m.scheduledAt,
		CountdownDeadline:  m.countdownDeadline,
		ActiveDeadline:     m.activeDeadline,
		SubmissionDeadline: m.submissionDeadline,
		Participants:       m.registry.All(),
		TimerArmed:         m.timer.Armed(),
	}
}

// Close cancels the pending timer. The session does not advance afterwards
// and no new session can be started.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.timer.CancelPending()
}

func (m *Machine) onTimer(handle TimerHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || !m.timer.Consume(handle) {
		return
	}

	now := m.now()
	var events []Event
	switch m.phase {
	case PhaseCountdown:
		events = m.beginActive(now, TriggerTimer, false)
	case PhaseActive:
		events = m.closeActive(now, TriggerTimer, false)
	case PhaseAwaitingFinalSubmission:
		events = m.finish(now, TriggerTimer)
	default:
		m.violation(Errorf(CodeInternalInvariant, "timer fired in phase %s", m.phase))
		return
	}
	m.publish(events)
}

// beginActive moves Countdown to Active. The reading window is measured from
// the actual activation, so an early skip keeps the full duration.
func (m *Machine) beginActive(now time.Time, trigger Trigger, skipped bool) []Event {
	m.phase = PhaseActive
	m.countdownDeadline = time.Time{}
	m.activeDeadline = now.Add(m.config.Duration())

	events := []Event{m.event(now, trigger, EventSessionStarted, SessionStartedPayload{
		Participants: m.registry.Identities(),
		EndsAt:       m.activeDeadline,
		Skipped:      skipped,
	})}
	m.arm(m.activeDeadline)
	return events
}

// closeActive moves Active to the grace window, or straight to Inactive when
// nobody has a submission outstanding.
func (m *Machine) closeActive(now time.Time, trigger Trigger, skipped bool) []Event {
	m.phase = PhaseAwaitingFinalSubmission
	m.activeDeadline = time.Time{}
	m.submissionDeadline = now.Add(m.policy.GracePeriod)

	events := []Event{m.event(now, trigger, EventSessionEnded, SessionEndedPayload{
		SubmissionDeadline: m.submissionDeadline,
		Skipped:            skipped,
	})}

	if m.registry.AllSubmitted() {
		return append(events, m.finish(now, trigger)...)
	}
	m.arm(m.submissionDeadline)
	return events
}

// finish computes the scoreboard and returns to Inactive.
func (m *Machine) finish(now time.Time, trigger Trigger) []Event {
	participants := m.registry.All()
	events := []Event{m.event(now, trigger, EventScoreboardReady, ScoreboardReadyPayload{
		Scoreboard:   ComputeScoreboard(participants),
		Participants: participants,
	})}
	m.reset()
	return events
}

func (m *Machine) reset() {
	m.phase = PhaseInactive
	m.sessionID = ""
	m.config = SessionConfig{}
	m.registry.Clear()
	m.scheduledAt = time.Time{}
	m.countdownDeadline = time.Time{}
	m.activeDeadline = time.Time{}
	m.submissionDeadline = time.Time{}
}

func (m *Machine) arm(deadline time.Time) {
	if _, err := m.timer.Arm(deadline, m.onTimer); err != nil {
		m.violation(err)
	}
}

func (m *Machine) registrationOpen() error {
	switch m.phase {
	case PhaseInactive:
		return ErrNoActiveSession
	case PhaseAwaitingFinalSubmission:
		return ErrChallengeOver
	}
	return nil
}

func (m *Machine) event(now time.Time, trigger Trigger, typ EventType, payload any) Event {
	return Event{
		Type:      typ,
		SessionID: m.sessionID,
		Timestamp: now,
		Trigger:   trigger,
		Payload:   payload,
	}
}

func (m *Machine) publish(events []Event) []Event {
	if len(events) > 0 {
		m.sink.Publish(events...)
	}
	return events
}
