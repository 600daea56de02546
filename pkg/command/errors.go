// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package command

import (
	"errors"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

const (
	// CodeUnknownCommand is reported for verbs no handler serves.
	CodeUnknownCommand challenge.Code = "UNKNOWN_COMMAND"

	// CodeInvalidCommand is reported for commands missing a verb or caller.
	CodeInvalidCommand challenge.Code = "INVALID_COMMAND"
)

var (
	// ErrUnknownCommand indicates that no enabled handler serves the verb.
	ErrUnknownCommand = &challenge.Error{Code: CodeUnknownCommand, Message: "unknown command"}

	// ErrInvalidCommand indicates that the command is missing its verb or caller.
	ErrInvalidCommand = &challenge.Error{Code: CodeInvalidCommand, Message: "command requires a verb and a caller"}

	// ErrInvalidConfig indicates that a command's configuration is invalid.
	ErrInvalidConfig = errors.New("invalid command configuration")
)
