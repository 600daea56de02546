// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// resultStoreDefaultTTL is the default TTL for an archived result (30 days)
	resultStoreDefaultTTL = 30 * 24 * time.Hour
	// resultStoreDefaultHistory is how many session ids the history list keeps
	resultStoreDefaultHistory = 20
	// resultStoreKeyPrefix is the prefix for all archived result keys
	resultStoreKeyPrefix = "reading_challenge:result:"
	// resultStoreHistoryKey lists archived session ids, newest first
	resultStoreHistoryKey = "reading_challenge:results"
)

// RedisResultStore implements ResultStore using Redis.
type RedisResultStore struct {
	client redis.UniversalClient
	cfg    RedisResultStoreConfig
}

type RedisResultStoreConfig struct {
	History int
	TTL     time.Duration
}

var (
	_ ResultStore    = (*RedisResultStore)(nil)
	_ event.Consumer = (*RedisResultStore)(nil)
)

// NewRedisResultStore creates a new Redis-backed result archive.
func NewRedisResultStore(
	client redis.UniversalClient,
	cfg RedisResultStoreConfig,
) *RedisResultStore {
	if cfg.History <= 0 {
		cfg.History = resultStoreDefaultHistory
	}
	if cfg.TTL <= 0 {
		cfg.TTL = resultStoreDefaultTTL
	}

	return &RedisResultStore{
		client: client,
		cfg:    cfg,
	}
}

// makeResultStoreKey creates a Redis key for a session result
func makeResultStoreKey(sessionID string) string {
	return fmt.Sprintf("%s%s", resultStoreKeyPrefix, sessionID)
}

// Name implements event.Consumer.
func (r *RedisResultStore) Name() string {
	return "redis-result-store"
}

// Filter implements event.Consumer.
func (r *RedisResultStore) Filter() event.Filter {
	return func(e challenge.Event) bool {
		return e.Type == challenge.EventScoreboardReady
	}
}

// Handle archives the scoreboard carried by a scoreboard_ready event.
func (r *RedisResultStore) Handle(ctx context.Context, e challenge.Event) error {
	result, err := ResultFromEvent(e)
	if err != nil {
		return err
	}
	return r.SaveResult(ctx, result)
}

// SaveResult stores result and pushes its session id onto the history list,
// trimming the list to the configured length.
func (r *RedisResultStore) SaveResult(ctx context.Context, result *SessionResult) error {
	if result.SessionID == "" {
		return fmt.Errorf("cannot archive result without session id")
	}

	data, err := json.Marshal(result)
	if err != nil {
		logrus.Errorf("failed to marshal result for session %s: %v", result.SessionID, err)
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, makeResultStoreKey(result.SessionID), data, r.cfg.TTL)
		pipe.LPush(ctx, resultStoreHistoryKey, result.SessionID)
		pipe.LTrim(ctx, resultStoreHistoryKey, 0, int64(r.cfg.History-1))
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to archive result for session %s: %v", result.SessionID, err)
		return fmt.Errorf("failed to archive result: %w", err)
	}

	logrus.Infof("archived result for session %s (%d entries, winners %v)",
		result.SessionID, len(result.Scoreboard.Entries), result.Scoreboard.Winners)
	return nil
}

// GetResult retrieves the archived result of a session.
func (r *RedisResultStore) GetResult(ctx context.Context, sessionID string) (*SessionResult, error) {
	data, err := r.client.Get(ctx, makeResultStoreKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrResultNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result SessionResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// RecentResults returns up to limit archived results, newest first.
// Results whose key has expired are skipped.
func (r *RedisResultStore) RecentResults(ctx context.Context, limit int) ([]SessionResult, error) {
	if limit <= 0 || limit > r.cfg.History {
		limit = r.cfg.History
	}

	ids, err := r.client.LRange(ctx, resultStoreHistoryKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]SessionResult, 0, len(ids))
	for _, id := range ids {
		result, err := r.GetResult(ctx, id)
		if errors.Is(err, ErrResultNotFound) {
			logrus.Debugf("result for session %s expired, skipping", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}
