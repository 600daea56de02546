// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics defines the Prometheus metrics of the reading challenge.
package metrics

import (
	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reading_challenge"

// Command outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeUnknown  = "unknown"
)

// Session outcomes.
const (
	SessionCompleted       = "completed"
	SessionEndedByOperator = "ended_by_operator"
)

// Metrics holds the challenge collectors.
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	EventsTotal        *prometheus.CounterVec
	SessionsTotal      *prometheus.CounterVec
	DroppedEventsTotal *prometheus.CounterVec
	participants       prometheus.GaugeFunc
}

// New creates the collectors. participants reports the live registry size.
func New(participants func() int) *Metrics {
	if participants == nil {
		participants = func() int { return 0 }
	}

	return &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of commands handled, by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of events emitted, by type",
			},
			[]string{"type"},
		),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Total number of finished sessions, by outcome",
			},
			[]string{"outcome"},
		),
		DroppedEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_events_total",
				Help:      "Total number of events dropped because a subscriber was too slow",
			},
			[]string{"subscriber"},
		),
		participants: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "participants",
				Help:      "Number of participants registered in the current session",
			},
			func() float64 { return float64(participants()) },
		),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.CommandsTotal,
		m.EventsTotal,
		m.SessionsTotal,
		m.DroppedEventsTotal,
		m.participants,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveCommand counts one handled command.
func (m *Metrics) ObserveCommand(verb, outcome string) {
	m.CommandsTotal.WithLabelValues(verb, outcome).Inc()
}

// ObserveDrop counts one event a subscriber lost.
func (m *Metrics) ObserveDrop(subscriber string, _ challenge.Event) {
	m.DroppedEventsTotal.WithLabelValues(subscriber).Inc()
}

// Sink counts events on their way to next.
func (m *Metrics) Sink(next challenge.Sink) challenge.Sink {
	return challenge.SinkFunc(func(events ...challenge.Event) {
		for _, e := range events {
			m.EventsTotal.WithLabelValues(string(e.Type)).Inc()
			switch e.Type {
			case challenge.EventScoreboardReady:
				m.SessionsTotal.WithLabelValues(SessionCompleted).Inc()
			case challenge.EventSessionEndedByOperator:
				m.SessionsTotal.WithLabelValues(SessionEndedByOperator).Inc()
			}
		}
		if next != nil {
			next.Publish(events...)
		}
	})
}
