// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package builtin

import (
	"context"
	"strings"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/command"
)

const (
	// JoinCommandType registers the caller: join [progress].
	JoinCommandType = "builtin.join"

	// DropCommandType unregisters the caller: drop [quietly].
	DropCommandType = "builtin.drop"

	// ProgressCommandType records the caller's current page: progress <progress>.
	ProgressCommandType = "builtin.progress"

	defaultQuietKeyword = "quietly"
)

// JoinCommand registers the caller with an optional starting page.
type JoinCommand struct {
	base
	session Session
}

// NewJoinCommand creates a join command.
func NewJoinCommand(config command.CommandConfig, session Session) *JoinCommand {
	return &JoinCommand{base: base{config: config}, session: session}
}

// Handle joins the caller.
func (c *JoinCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	return c.session.Join(cmd.Caller, cmd.Text())
}

// DropCommand unregisters the caller.
type DropCommand struct {
	base
	session      Session
	quietKeyword string
}

// NewDropCommand creates a drop command.
// The "quiet_keyword" parameter overrides the word that suppresses the announcement.
func NewDropCommand(config command.CommandConfig, session Session) *DropCommand {
	return &DropCommand{
		base:         base{config: config},
		session:      session,
		quietKeyword: strings.ToLower(config.GetParameterString("quiet_keyword", defaultQuietKeyword)),
	}
}

// Handle drops the caller.
func (c *DropCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	quiet := false
	for _, arg := range cmd.Args {
		if strings.EqualFold(strings.TrimSpace(arg), c.quietKeyword) {
			quiet = true
			break
		}
	}
	return c.session.Drop(cmd.Caller, quiet)
}

// ProgressCommand records the caller's progress.
type ProgressCommand struct {
	base
	session Session
}

// NewProgressCommand creates a progress command.
func NewProgressCommand(config command.CommandConfig, session Session) *ProgressCommand {
	return &ProgressCommand{base: base{config: config}, session: session}
}

// Handle updates the caller's progress.
func (c *ProgressCommand) Handle(ctx context.Context, cmd command.Command) ([]challenge.Event, error) {
	return c.session.UpdateProgress(cmd.Caller, cmd.Text())
}
