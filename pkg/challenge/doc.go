// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package challenge models the reading challenge session lifecycle.
//
// A session moves through four phases:
//
//	Inactive -> Countdown -> Active -> AwaitingFinalSubmission -> Inactive
//
// Phase changes are driven either by commands (start, skip, end, progress)
// or by the single phase timer the Machine owns. Both paths call the same
// transition functions under one mutex, so a timer firing at the same instant
// as a command cannot leave the phase and the participant registry out of step.
//
// The package holds:
//   - the participant registry and the scoreboard calculator,
//   - the cancellable phase timer,
//   - the progress and start-parameter parsers,
//   - and the Machine that validates commands and emits events.
package challenge
