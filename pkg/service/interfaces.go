// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

// Service interfaces for the external systems that challenge events feed.
//
// Consumers depend on these interfaces rather than on the Redis or AGS
// implementations so tests can swap in miniredis or the mocks under
// service/mock.

// EventPublisher forwards a challenge event to an external bus.
type EventPublisher interface {
	Publish(ctx context.Context, e challenge.Event) error
}

// ResultStore archives the scoreboards of finished sessions.
type ResultStore interface {
	SaveResult(ctx context.Context, result *SessionResult) error
	GetResult(ctx context.Context, sessionID string) (*SessionResult, error)
	// RecentResults returns up to limit results, newest first.
	RecentResults(ctx context.Context, limit int) ([]SessionResult, error)
}

// StatisticUpdater increments a player statistic.
type StatisticUpdater interface {
	IncrementStat(ctx context.Context, userID, statCode string) error
}
