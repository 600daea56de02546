// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

// ErrResultNotFound is returned when no archived result exists for a session.
var ErrResultNotFound = errors.New("session result not found")

// SessionResult is the archived outcome of one finished session.
type SessionResult struct {
	SessionID    string                  `json:"sessionId"`
	FinishedAt   time.Time               `json:"finishedAt"`
	Scoreboard   challenge.Scoreboard    `json:"scoreboard"`
	Participants []challenge.Participant `json:"participants"`
}

// ResultFromEvent builds a SessionResult from a scoreboard_ready event.
func ResultFromEvent(e challenge.Event) (*SessionResult, error) {
	if e.Type != challenge.EventScoreboardReady {
		return nil, fmt.Errorf("event %s carries no scoreboard", e.Type)
	}

	var payload challenge.ScoreboardReadyPayload
	switch p := e.Payload.(type) {
	case challenge.ScoreboardReadyPayload:
		payload = p
	case *challenge.ScoreboardReadyPayload:
		payload = *p
	default:
		return nil, fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Type)
	}

	return &SessionResult{
		SessionID:    e.SessionID,
		FinishedAt:   e.Timestamp,
		Scoreboard:   payload.Scoreboard,
		Participants: payload.Participants,
	}, nil
}
