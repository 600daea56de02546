// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package builtin

import (
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/command"
)

// Session is the part of challenge.Machine the built-in commands drive.
type Session interface {
	Policy() challenge.Policy
	StartSession(cfg challenge.SessionConfig) ([]challenge.Event, error)
	SkipPhase() ([]challenge.Event, error)
	EndSession() ([]challenge.Event, error)
	Join(identity, progressText string) ([]challenge.Event, error)
	Drop(identity string, quiet bool) ([]challenge.Event, error)
	UpdateProgress(identity, progressText string) ([]challenge.Event, error)
	QueryTimer() (challenge.TimerStatus, error)
	ListParticipants() []string
}

var _ Session = (*challenge.Machine)(nil)

// Dependencies holds dependencies needed by built-in commands.
type Dependencies struct {
	Session  Session
	Registry *command.Registry
	Now      func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// RegisterCommands registers built-in command factories with dependencies.
func RegisterCommands(deps *Dependencies) {
	command.RegisterCommandType(StartCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewStartCommand(config, deps.Session), nil
	})
	command.RegisterCommandType(SkipCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewSkipCommand(config, deps.Session), nil
	})
	command.RegisterCommandType(EndCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewEndCommand(config, deps.Session), nil
	})
	command.RegisterCommandType(JoinCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewJoinCommand(config, deps.Session), nil
	})
	command.RegisterCommandType(DropCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewDropCommand(config, deps.Session), nil
	})
	command.RegisterCommandType(ProgressCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewProgressCommand(config, deps.Session), nil
	})
	command.RegisterCommandType(TimerCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewTimerCommand(config, deps.Session, deps.now), nil
	})
	command.RegisterCommandType(ParticipantsCommandType, func(config command.CommandConfig) (command.Handler, error) {
		return NewParticipantsCommand(config, deps.Session, deps.now), nil
	})
	command.RegisterCommandType(HelpCommandType, func(config command.CommandConfig) (command.Handler, error) {
		if deps.Registry == nil {
			return nil, command.ErrInvalidConfig
		}
		return NewHelpCommand(config, deps.Registry, deps.now), nil
	})
}

// base carries the configuration every built-in command shares.
type base struct {
	config command.CommandConfig
}

// ID returns the command identifier.
func (b base) ID() string {
	return b.config.ID
}

// Config returns the command configuration.
func (b base) Config() command.CommandConfig {
	return b.config
}
