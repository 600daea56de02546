// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import "time"

const (
	// DefaultStartInMinutes is the countdown used when a start command omits "in".
	DefaultStartInMinutes = 1

	// DefaultDurationMinutes is the reading window used when a start command omits "for".
	DefaultDurationMinutes = 30

	// DefaultGracePeriod is how long participants may submit final progress
	// after the reading window closes.
	DefaultGracePeriod = 3 * time.Minute
)

// Policy holds the fixed timing constants of a deployment.
type Policy struct {
	DefaultStartInMinutes  int
	DefaultDurationMinutes int
	GracePeriod            time.Duration
}

// DefaultPolicy returns the canonical policy: 1 minute countdown,
// 30 minute reading window and a 3 minute grace period.
func DefaultPolicy() Policy {
	return Policy{
		DefaultStartInMinutes:  DefaultStartInMinutes,
		DefaultDurationMinutes: DefaultDurationMinutes,
		GracePeriod:            DefaultGracePeriod,
	}
}

// DefaultConfig returns the session config used when no parameters are given.
func (p Policy) DefaultConfig() SessionConfig {
	return SessionConfig{
		StartInMinutes:  p.DefaultStartInMinutes,
		DurationMinutes: p.DefaultDurationMinutes,
	}
}

// SessionConfig is fixed when a session starts and never changes afterwards.
type SessionConfig struct {
	StartInMinutes  int `json:"startInMinutes"`
	DurationMinutes int `json:"durationMinutes"`
}

// StartIn returns the countdown length.
func (c SessionConfig) StartIn() time.Duration {
	return time.Duration(c.StartInMinutes) * time.Minute
}

// Duration returns the reading window length.
func (c SessionConfig) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}
