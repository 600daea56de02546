// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultEventChannel is the Redis pub/sub channel events are published on.
	DefaultEventChannel = "reading_challenge:events"

	defaultPublishRetries       = 3
	defaultPublishRetryInterval = 200 * time.Millisecond
)

// RedisEventPublisher publishes every challenge event as JSON on a Redis
// pub/sub channel so chat adapters outside this process can render them.
type RedisEventPublisher struct {
	client redis.UniversalClient
	cfg    RedisEventPublisherConfig
}

type RedisEventPublisherConfig struct {
	Channel       string
	MaxRetries    uint64
	RetryInterval time.Duration
}

var (
	_ EventPublisher = (*RedisEventPublisher)(nil)
	_ event.Consumer = (*RedisEventPublisher)(nil)
)

// NewRedisEventPublisher creates a publisher, filling unset config with defaults.
func NewRedisEventPublisher(
	client redis.UniversalClient,
	cfg RedisEventPublisherConfig,
) *RedisEventPublisher {
	if cfg.Channel == "" {
		cfg.Channel = DefaultEventChannel
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultPublishRetries
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultPublishRetryInterval
	}

	return &RedisEventPublisher{
		client: client,
		cfg:    cfg,
	}
}

// Name implements event.Consumer.
func (p *RedisEventPublisher) Name() string {
	return "redis-event-publisher"
}

// Filter implements event.Consumer.
func (p *RedisEventPublisher) Filter() event.Filter {
	return event.All
}

// Handle implements event.Consumer.
func (p *RedisEventPublisher) Handle(ctx context.Context, e challenge.Event) error {
	return p.Publish(ctx, e)
}

// Publish sends e to the configured channel, retrying transient failures.
func (p *RedisEventPublisher) Publish(ctx context.Context, e challenge.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.Type, err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.cfg.RetryInterval), p.cfg.MaxRetries),
		ctx,
	)

	err = backoff.Retry(func() error {
		if err := p.client.Publish(ctx, p.cfg.Channel, data).Err(); err != nil {
			logrus.Warnf("failed to publish event %s to %s: %v, retrying...", e.Type, p.cfg.Channel, err)
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.Type, err)
	}

	logrus.Debugf("published event %s for session %s to %s", e.Type, e.SessionID, p.cfg.Channel)
	return nil
}
