// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package builtin

import (
	"context"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/command"
)

const (
	// TimerCommandType reports the time left in the current phase.
	TimerCommandType = "builtin.timer"

	// ParticipantsCommandType lists the registered participants.
	ParticipantsCommandType = "builtin.participants"

	// HelpCommandType lists the enabled commands.
	HelpCommandType = "builtin.help"
)

// TimerCommand reports the remaining time.
type TimerCommand struct {
	base
	session Session
	now     func() time.Time
}

// NewTimerCommand creates a timer command.
func NewTimerCommand(config command.CommandConfig, session Session, now func() time.Time) *TimerCommand {
	return &TimerCommand{base: base{config: config}, session: session, now: now}
}

// Handle reports the timer.
func (c *TimerCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	status, err := c.session.QueryTimer()
	if err != nil {
		return nil, err
	}

	return []challenge.Event{{
		Type:      challenge.EventTimerReported,
		SessionID: status.SessionID,
		Timestamp: c.now(),
		Trigger:   challenge.TriggerCommand,
		Payload: challenge.TimerReportedPayload{
			Phase:            status.Phase,
			Remaining:        status.Remaining,
			RemainingSeconds: int64(status.Remaining / time.Second),
		},
	}}, nil
}

// ParticipantsCommand lists participants in registration order.
type ParticipantsCommand struct {
	base
	session Session
	now     func() time.Time
}

// NewParticipantsCommand creates a participants command.
func NewParticipantsCommand(config command.CommandConfig, session Session, now func() time.Time) *ParticipantsCommand {
	return &ParticipantsCommand{base: base{config: config}, session: session, now: now}
}

// Handle lists participants. An empty list is not an error.
func (c *ParticipantsCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	return []challenge.Event{{
		Type:      challenge.EventParticipantsListed,
		Timestamp: c.now(),
		Trigger:   challenge.TriggerCommand,
		Payload: challenge.ParticipantsListedPayload{
			Participants: c.session.ListParticipants(),
		},
	}}, nil
}

// HelpCommand lists the commands registered alongside it.
type HelpCommand struct {
	base
	registry *command.Registry
	now      func() time.Time
}

// NewHelpCommand creates a help command.
func NewHelpCommand(config command.CommandConfig, registry *command.Registry, now func() time.Time) *HelpCommand {
	return &HelpCommand{base: base{config: config}, registry: registry, now: now}
}

// Handle lists every registered command in registration order.
func (c *HelpCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	handlers := c.registry.GetAll()
	entries := make([]challenge.HelpEntry, 0, len(handlers))
	for _, h := range handlers {
		cfg := h.Config()
		entries = append(entries, challenge.HelpEntry{
			Verb:        h.ID(),
			Usage:       cfg.Usage,
			Description: cfg.Description,
			Aliases:     cfg.Aliases,
		})
	}

	return []challenge.Event{{
		Type:      challenge.EventHelpListed,
		Timestamp: c.now(),
		Trigger:   challenge.TriggerCommand,
		Payload:   challenge.HelpListedPayload{Commands: entries},
	}}, nil
}
