// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"errors"
	"fmt"
)

// Code identifies the reason a command was refused.
type Code string

const (
	CodeAlreadyActive         Code = "ALREADY_ACTIVE"
	CodeNoActiveSession       Code = "NO_ACTIVE_SESSION"
	CodeAlreadyJoined         Code = "ALREADY_JOINED"
	CodeNotAJoinedParticipant Code = "NOT_A_JOINED_PARTICIPANT"
	CodeInvalidProgressValue  Code = "INVALID_PROGRESS_VALUE"
	CodeNothingToSkip         Code = "NOTHING_TO_SKIP"
	CodeChallengeNotStarted   Code = "CHALLENGE_NOT_STARTED"
	CodeChallengeOver         Code = "CHALLENGE_OVER"
	CodeShuttingDown          Code = "SHUTTING_DOWN"
	CodeInternalInvariant     Code = "INTERNAL_INVARIANT"
)

// Error is a coded domain error. Two errors match under errors.Is when
// their codes are equal, so callers can compare against the sentinels
// below even when the message carries extra detail.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Errorf returns a coded error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code of a domain error. Non-domain errors
// report CodeInternalInvariant.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return CodeInternalInvariant
}

var (
	// ErrAlreadyActive indicates a session is already scheduled or running.
	ErrAlreadyActive = &Error{Code: CodeAlreadyActive, Message: "a challenge is already in progress"}

	// ErrNoActiveSession indicates there is no session to act on.
	ErrNoActiveSession = &Error{Code: CodeNoActiveSession, Message: "there is no active challenge"}

	// ErrAlreadyJoined indicates the caller is already registered.
	ErrAlreadyJoined = &Error{Code: CodeAlreadyJoined, Message: "already joined the challenge"}

	// ErrNotAJoinedParticipant indicates the caller is not registered.
	ErrNotAJoinedParticipant = &Error{Code: CodeNotAJoinedParticipant, Message: "not a participant of the challenge"}

	// ErrInvalidProgressValue indicates the progress text could not be parsed.
	ErrInvalidProgressValue = &Error{Code: CodeInvalidProgressValue, Message: "invalid progress value"}

	// ErrNothingToSkip indicates the current phase cannot be skipped.
	ErrNothingToSkip = &Error{Code: CodeNothingToSkip, Message: "nothing to skip"}

	// ErrChallengeNotStarted indicates progress was sent during the countdown.
	ErrChallengeNotStarted = &Error{Code: CodeChallengeNotStarted, Message: "the challenge has not started yet"}

	// ErrChallengeOver indicates registration changes were sent during the grace window.
	ErrChallengeOver = &Error{Code: CodeChallengeOver, Message: "the challenge is over, only final progress is accepted"}

	// ErrShuttingDown indicates a session was started or advanced after Close.
	ErrShuttingDown = &Error{Code: CodeShuttingDown, Message: "the service is shutting down"}

	// ErrTimerAlreadyArmed indicates a second timer was armed while one is pending.
	ErrTimerAlreadyArmed = &Error{Code: CodeInternalInvariant, Message: "phase timer already armed"}
)
