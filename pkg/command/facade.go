// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package command

import (
	"context"
	"errors"
	"time"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/common"
	"github.com/AccelByte/extend-reading-challenge/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const unknownVerbLabel = "_unknown"

// Observer records command outcomes.
type Observer interface {
	ObserveCommand(verb, outcome string)
}

// FacadeOption customizes Facade construction.
type FacadeOption func(*Facade)

// WithRejectionSink publishes command.rejected events to sink as well as
// returning them to the caller.
func WithRejectionSink(sink challenge.Sink) FacadeOption {
	return func(f *Facade) {
		f.rejections = sink
	}
}

// WithObserver sets the command outcome observer.
func WithObserver(o Observer) FacadeOption {
	return func(f *Facade) {
		f.observer = o
	}
}

// WithClock sets the clock used to timestamp rejections.
func WithClock(now func() time.Time) FacadeOption {
	return func(f *Facade) {
		f.now = now
	}
}

// Facade routes parsed commands to their handlers.
type Facade struct {
	registry   *Registry
	rejections challenge.Sink
	observer   Observer
	now        func() time.Time
}

// NewFacade creates a facade over registry.
func NewFacade(registry *Registry, opts ...FacadeOption) *Facade {
	f := &Facade{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the handler registry.
func (f *Facade) Registry() *Registry {
	return f.registry
}

// Dispatch runs cmd and returns the events it produced. Refusals come back
// as a single command.rejected event; Dispatch itself never fails.
func (f *Facade) Dispatch(ctx context.Context, cmd Command) []challenge.Event {
	scope := common.GetScopeFromContext(ctx, "command.Dispatch")
	defer scope.Finish()

	cmd = cmd.Normalize()
	scope.SetAttributes("command.verb", cmd.Verb)
	scope.SetAttributes("command.caller", cmd.Caller)

	if cmd.Verb == "" || cmd.Caller == "" {
		return f.reject(scope, unknownVerbLabel, cmd, ErrInvalidCommand)
	}

	h := f.registry.Lookup(cmd.Verb)
	if h == nil {
		return f.reject(scope, unknownVerbLabel, cmd, challenge.Errorf(CodeUnknownCommand, "unknown command %q", cmd.Verb))
	}

	events, err := h.Handle(scope.Ctx, cmd)
	if err != nil {
		return f.reject(scope, h.ID(), cmd, err)
	}

	scope.Log.WithFields(logrus.Fields{
		"verb":   h.ID(),
		"caller": cmd.Caller,
		"events": len(events),
	}).Debug("command handled")
	f.observe(h.ID(), metrics.OutcomeOK)
	return events
}

func (f *Facade) reject(scope *common.Scope, label string, cmd Command, err error) []challenge.Event {
	code := challenge.CodeOf(err)
	message := err.Error()
	var domainErr *challenge.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	entry := scope.Log.WithFields(logrus.Fields{
		"verb":   cmd.Verb,
		"caller": cmd.Caller,
		"code":   code,
	})
	if code == challenge.CodeInternalInvariant {
		scope.TraceError(err)
		entry.WithError(err).Error("command failed")
	} else {
		entry.Infof("command rejected: %s", message)
	}

	outcome := metrics.OutcomeRejected
	if label == unknownVerbLabel {
		outcome = metrics.OutcomeUnknown
	}
	f.observe(label, outcome)

	rejected := challenge.Event{
		Type:      challenge.EventCommandRejected,
		Timestamp: f.now(),
		Trigger:   challenge.TriggerCommand,
		Payload: challenge.CommandRejectedPayload{
			Verb:    cmd.Verb,
			Code:    code,
			Message: message,
		},
	}
	if f.rejections != nil {
		f.rejections.Publish(rejected)
	}
	return []challenge.Event{rejected}
}

func (f *Facade) observe(verb, outcome string) {
	if f.observer != nil {
		f.observer.ObserveCommand(verb, outcome)
	}
}
