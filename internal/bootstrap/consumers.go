// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"
	"github.com/AccelByte/extend-reading-challenge/pkg/service"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ConsumerDependencies holds the external services event consumers write to.
// Nil services disable their consumers.
type ConsumerDependencies struct {
	RedisClient   redis.UniversalClient
	EventChannel  string
	ResultHistory int

	StatUpdater           service.StatisticUpdater
	WinsStatCode          string
	ParticipationStatCode string
}

// InitConsumers registers the event consumers on a runner bound to the
// challenge broadcaster. The runner is not started.
//
// ============================================================
// DEVELOPER: Register custom event consumers here.
// ============================================================
// A consumer implements event.Consumer (see pkg/service for the
// Redis and AGS consumers). Each consumer gets its own goroutine
// and buffered subscription; it never blocks the session.
// ============================================================
func InitConsumers(c *Challenge, deps ConsumerDependencies) (*event.Runner, error) {
	runner := event.NewRunner(c.Broadcaster)

	consumers := []event.Consumer{sessionLogConsumer()}

	if deps.RedisClient != nil {
		consumers = append(consumers,
			service.NewRedisEventPublisher(deps.RedisClient, service.RedisEventPublisherConfig{
				Channel: deps.EventChannel,
			}),
			service.NewRedisResultStore(deps.RedisClient, service.RedisResultStoreConfig{
				History: deps.ResultHistory,
			}),
		)
	}

	if deps.StatUpdater != nil {
		consumers = append(consumers,
			service.NewChallengeStatsRecorder(deps.StatUpdater, service.ChallengeStatsRecorderConfig{
				WinsStatCode:          deps.WinsStatCode,
				ParticipationStatCode: deps.ParticipationStatCode,
			}),
		)
	}

	for _, consumer := range consumers {
		if err := runner.Register(consumer); err != nil {
			return nil, fmt.Errorf("failed to register consumer: %w", err)
		}
	}
	logrus.Infof("registered %d event consumers", runner.Count())

	return runner, nil
}

// sessionLogConsumer writes one log line per lifecycle event.
func sessionLogConsumer() event.Consumer {
	return event.Func{
		ConsumerName: "session-log",
		Accept:       event.LifecycleOnly,
		Fn: func(_ context.Context, e challenge.Event) error {
			logrus.WithFields(logrus.Fields{
				"sessionId": e.SessionID,
				"trigger":   e.Trigger,
			}).Infof("session event %s", e.Type)
			return nil
		},
	}
}
