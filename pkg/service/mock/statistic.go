// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mock

import (
	"context"
	"sync"
)

// StatisticUpdater is a mock implementation of service.StatisticUpdater for testing
type StatisticUpdater struct {
	// IncrementStatFunc allows tests to customize the behavior
	IncrementStatFunc func(ctx context.Context, userID, statCode string) error

	// Error is returned by every call when IncrementStatFunc is nil
	Error error

	mu    sync.Mutex
	calls []IncrementStatCall
}

// IncrementStatCall tracks parameters for IncrementStat calls
type IncrementStatCall struct {
	UserID   string
	StatCode string
}

// NewStatisticUpdater creates a new mock statistic updater with default behavior
func NewStatisticUpdater() *StatisticUpdater {
	return &StatisticUpdater{}
}

// WithError sets an error to return
func (m *StatisticUpdater) WithError(err error) *StatisticUpdater {
	m.Error = err
	return m
}

// IncrementStat records the call and returns the mocked result
func (m *StatisticUpdater) IncrementStat(ctx context.Context, userID, statCode string) error {
	m.mu.Lock()
	m.calls = append(m.calls, IncrementStatCall{UserID: userID, StatCode: statCode})
	m.mu.Unlock()

	if m.IncrementStatFunc != nil {
		return m.IncrementStatFunc(ctx, userID, statCode)
	}
	return m.Error
}

// Calls returns a copy of the recorded calls
func (m *StatisticUpdater) Calls() []IncrementStatCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]IncrementStatCall, len(m.calls))
	copy(out, m.calls)
	return out
}
