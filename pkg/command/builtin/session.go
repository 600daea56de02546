// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package builtin

import (
	"context"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/command"
)

const (
	// StartCommandType schedules a new session: start [in N] [for N].
	StartCommandType = "builtin.start"

	// SkipCommandType cuts the countdown or the reading window short.
	SkipCommandType = "builtin.skip"

	// EndCommandType stops the session without a scoreboard.
	EndCommandType = "builtin.end"
)

// StartCommand schedules a session from "in" and "for" arguments.
type StartCommand struct {
	base
	session Session
}

// NewStartCommand creates a start command.
func NewStartCommand(config command.CommandConfig, session Session) *StartCommand {
	return &StartCommand{base: base{config: config}, session: session}
}

// Handle starts the session.
func (c *StartCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	cfg := challenge.ParseStartParams(cmd.Args, c.session.Policy())
	return c.session.StartSession(cfg)
}

// SkipCommand advances the current phase.
type SkipCommand struct {
	base
	session Session
}

// NewSkipCommand creates a skip command.
func NewSkipCommand(config command.CommandConfig, session Session) *SkipCommand {
	return &SkipCommand{base: base{config: config}, session: session}
}

// Handle skips the phase.
func (c *SkipCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	return c.session.SkipPhase()
}

// EndCommand ends the session.
type EndCommand struct {
	base
	session Session
}

// NewEndCommand creates an end command.
func NewEndCommand(config command.CommandConfig, session Session) *EndCommand {
	return &EndCommand{base: base{config: config}, session: session}
}

// Handle ends the session.
func (c *EndCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	return c.session.EndSession()
}
