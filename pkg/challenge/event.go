// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import "time"

// EventType names an outbound event.
type EventType string

const (
	EventSessionScheduled       EventType = "session.scheduled"
	EventSessionStarted         EventType = "session.started"
	EventSessionEnded           EventType = "session.ended"
	EventScoreboardReady        EventType = "session.scoreboard_ready"
	EventSessionEndedByOperator EventType = "session.ended_by_operator"

	EventParticipantJoined  EventType = "participant.joined"
	EventParticipantDropped EventType = "participant.dropped"
	EventProgressUpdated    EventType = "participant.progress_updated"
	EventTimerReported      EventType = "session.timer_reported"
	EventParticipantsListed EventType = "session.participants_listed"
	EventHelpListed         EventType = "command.help_listed"
	EventCommandRejected    EventType = "command.rejected"
)

// Lifecycle reports whether the event announces a phase change rather than
// acknowledging a single command.
func (t EventType) Lifecycle() bool {
	switch t {
	case EventSessionScheduled, EventSessionStarted, EventSessionEnded,
		EventScoreboardReady, EventSessionEndedByOperator:
		return true
	}
	return false
}

// Trigger records what caused an event.
type Trigger string

const (
	TriggerCommand Trigger = "command"
	TriggerTimer   Trigger = "timer"
)

// Event is a structured notification for the chat adapter and other consumers.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Trigger   Trigger   `json:"trigger"`
	Payload   any       `json:"payload,omitempty"`
}

// SessionScheduledPayload accompanies EventSessionScheduled.
type SessionScheduledPayload struct {
	StartInMinutes  int       `json:"startInMinutes"`
	DurationMinutes int       `json:"durationMinutes"`
	StartsAt        time.Time `json:"startsAt"`
}

// SessionStartedPayload accompanies EventSessionStarted.
type SessionStartedPayload struct {
	Participants []string  `json:"participants"`
	EndsAt       time.Time `json:"endsAt"`
	Skipped      bool      `json:"skipped"`
}

// SessionEndedPayload accompanies EventSessionEnded.
type SessionEndedPayload struct {
	SubmissionDeadline time.Time `json:"submissionDeadline"`
	Skipped            bool      `json:"skipped"`
}

// ScoreboardReadyPayload accompanies EventScoreboardReady.
type ScoreboardReadyPayload struct {
	Scoreboard
	// Participants are the records the scoreboard was computed from.
	Participants []Participant `json:"participants"`
}

// ParticipantJoinedPayload accompanies EventParticipantJoined.
type ParticipantJoinedPayload struct {
	Identity        string `json:"identity"`
	InitialProgress int    `json:"initialProgress"`
}

// ParticipantDroppedPayload accompanies EventParticipantDropped.
type ParticipantDroppedPayload struct {
	Identity string `json:"identity"`
}

// ProgressUpdatedPayload accompanies EventProgressUpdated.
type ProgressUpdatedPayload struct {
	Identity        string `json:"identity"`
	CurrentProgress int    `json:"currentProgress"`
	Final           bool   `json:"final"`
}

// TimerReportedPayload accompanies EventTimerReported.
type TimerReportedPayload struct {
	Phase            Phase         `json:"phase"`
	Remaining        time.Duration `json:"remaining"`
	RemainingSeconds int64         `json:"remainingSeconds"`
}

// ParticipantsListedPayload accompanies EventParticipantsListed.
type ParticipantsListedPayload struct {
	Participants []string `json:"participants"`
}

// HelpEntry describes one command for EventHelpListed.
type HelpEntry struct {
	Verb        string   `json:"verb"`
	Usage       string   `json:"usage"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
}

// HelpListedPayload accompanies EventHelpListed.
type HelpListedPayload struct {
	Commands []HelpEntry `json:"commands"`
}

// CommandRejectedPayload accompanies EventCommandRejected.
type CommandRejectedPayload struct {
	Verb    string `json:"verb"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Sink receives every event the Machine emits, in emission order.
// Publish is called with the Machine lock held and must not block.
type Sink interface {
	Publish(events ...Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(events ...Event)

// Publish calls f(events...).
func (f SinkFunc) Publish(events ...Event) {
	f(events...)
}

type discardSink struct{}

func (discardSink) Publish(...Event) {}
