// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"
	"github.com/AccelByte/extend-reading-challenge/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Challenge bundles the session components shared by the transport, the
// consumers and the metrics server.
type Challenge struct {
	Machine     *challenge.Machine
	Broadcaster *event.Broadcaster
	Metrics     *metrics.Metrics
	// Sink is the metrics-counting sink in front of Broadcaster.
	Sink challenge.Sink
}

// InitChallenge creates the session machine and its event fan-out.
//
// ============================================================
// DEVELOPER: Event flow
// ============================================================
// Machine → metrics sink → broadcaster → subscribers
//
// The machine publishes while holding its lock, so everything
// behind the sink must be non-blocking. Slow work (Redis, AGS)
// belongs in an event consumer, see InitConsumers.
// ============================================================
func InitChallenge(policy challenge.Policy, subscriberBuffer int, opts ...challenge.Option) *Challenge {
	c := &Challenge{}

	c.Metrics = metrics.New(func() int {
		if c.Machine == nil {
			return 0
		}
		return c.Machine.ParticipantCount()
	})

	c.Broadcaster = event.NewBroadcaster(
		event.WithSubscriberCapacity(subscriberBuffer),
		event.WithDropHandler(c.Metrics.ObserveDrop),
	)
	c.Sink = c.Metrics.Sink(c.Broadcaster)

	base := []challenge.Option{
		challenge.WithPolicy(policy),
		challenge.WithSink(c.Sink),
	}
	c.Machine = challenge.NewMachine(append(base, opts...)...)

	logrus.Infof("initialized challenge machine (start in %dm, duration %dm, grace %s)",
		policy.DefaultStartInMinutes, policy.DefaultDurationMinutes, policy.GracePeriod)

	return c
}

// Close stops the session timer and closes every subscription.
func (c *Challenge) Close() {
	c.Machine.Close()
	c.Broadcaster.Close()
}
