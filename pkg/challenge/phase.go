// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

// Phase represents the current stage of the session lifecycle.
type Phase string

const (
	PhaseInactive                Phase = "INACTIVE"
	PhaseCountdown               Phase = "COUNTDOWN"
	PhaseActive                  Phase = "ACTIVE"
	PhaseAwaitingFinalSubmission Phase = "AWAITING_FINAL_SUBMISSION"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// AcceptsRegistration reports whether participants may join or drop.
func (p Phase) AcceptsRegistration() bool {
	return p == PhaseCountdown || p == PhaseActive
}

// AcceptsProgress reports whether progress updates are accepted.
func (p Phase) AcceptsProgress() bool {
	return p == PhaseActive || p == PhaseAwaitingFinalSubmission
}

// Skippable reports whether SkipPhase may cut the phase short.
// The grace window is never skippable.
func (p Phase) Skippable() bool {
	return p == PhaseCountdown || p == PhaseActive
}
