// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package command turns parsed chat commands into machine operations.
//
// Each verb is served by a Handler created from YAML configuration through a
// type factory, so deployments can rename, alias or disable commands without
// code changes. The Facade is the single entry point: it resolves the verb,
// runs the handler and converts refusals into command.rejected events.
package command

import (
	"context"
	"strings"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

// Command is an already parsed chat command.
type Command struct {
	Verb   string   `json:"verb"`
	Caller string   `json:"caller"`
	Args   []string `json:"args,omitempty"`
}

// Normalize lowercases the verb and strips a leading slash.
func (c Command) Normalize() Command {
	c.Verb = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Verb), "/"))
	c.Caller = strings.TrimSpace(c.Caller)
	return c
}

// Text joins the arguments with single spaces.
func (c Command) Text() string {
	return strings.Join(c.Args, " ")
}

// Handler serves one command verb.
// Handlers are registered in a Registry and invoked by the Facade.
type Handler interface {
	// ID returns the unique command identifier, which is also its primary verb.
	ID() string

	// Config returns the handler's configuration.
	Config() CommandConfig

	// Handle runs the command. Domain refusals are returned as errors and
	// become command.rejected events at the facade.
	Handle(ctx context.Context, cmd Command) ([]challenge.Event, error)
}
