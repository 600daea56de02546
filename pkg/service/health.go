// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultPingTimeout = 2 * time.Second

// RedisHealthChecker reports whether Redis answers PING.
type RedisHealthChecker struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisHealthChecker creates a checker using the default ping timeout.
func NewRedisHealthChecker(client redis.UniversalClient) *RedisHealthChecker {
	return &RedisHealthChecker{
		client:  client,
		timeout: defaultPingTimeout,
	}
}

// Check pings Redis once.
func (h *RedisHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
