// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/sirupsen/logrus"
)

// Consumer handles events outside the machine lock.
// Implementations do their I/O (Redis, AGS, metrics) here.
type Consumer interface {
	// Name identifies the consumer in logs and metrics.
	Name() string

	// Filter selects the events the consumer wants. Nil means all.
	Filter() Filter

	// Handle processes one event. Errors are logged and do not stop the consumer.
	Handle(ctx context.Context, e challenge.Event) error
}

// Runner owns one goroutine per registered consumer.
type Runner struct {
	mu          sync.Mutex
	broadcaster *Broadcaster
	consumers   map[string]Consumer
	order       []string
	subs        []*Subscription
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewRunner creates a runner bound to broadcaster.
func NewRunner(broadcaster *Broadcaster) *Runner {
	return &Runner{
		broadcaster: broadcaster,
		consumers:   make(map[string]Consumer),
	}
}

// Register adds a consumer. It must be called before Start.
// Returns an error if a consumer with the same name already exists.
func (r *Runner) Register(c Consumer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("consumer %s registered after start", c.Name())
	}
	if _, exists := r.consumers[c.Name()]; exists {
		return fmt.Errorf("consumer %s already registered", c.Name())
	}

	r.consumers[c.Name()] = c
	r.order = append(r.order, c.Name())
	return nil
}

// Count returns the number of registered consumers.
func (r *Runner) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.consumers)
}

// Start subscribes every consumer and begins delivery.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, name := range r.order {
		c := r.consumers[name]
		sub := r.broadcaster.Subscribe(c.Name(), c.Filter())
		r.subs = append(r.subs, sub)

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer sub.Close()
			Consume(ctx, sub, c.Handle)
		}()

		logrus.Infof("event consumer %s started", c.Name())
	}
}

// Stop unsubscribes every consumer and waits for them to handle the events
// already queued. When ctx expires first, the context passed to Handle is
// cancelled and the remaining events are discarded.
func (r *Runner) Stop(ctx context.Context) {
	r.mu.Lock()
	cancel := r.cancel
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logrus.WithError(ctx.Err()).Warn("event consumers did not drain before shutdown deadline")
	}
	if cancel != nil {
		cancel()
	}
	<-done

	if dropped := r.broadcaster.Dropped(); dropped > 0 {
		logrus.Warnf("%d events were dropped on full subscriber buffers", dropped)
	}
}

// Consume reads from sub until ctx is done or the subscription closes.
func Consume(ctx context.Context, sub *Subscription, handle func(context.Context, challenge.Event) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := handle(ctx, e); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"consumer":  sub.Name(),
					"event":     e.Type,
					"sessionId": e.SessionID,
				}).Error("event consumer failed")
			}
		}
	}
}

// Func adapts a function to the Consumer interface.
type Func struct {
	ConsumerName string
	Accept       Filter
	Fn           func(ctx context.Context, e challenge.Event) error
}

func (f Func) Name() string   { return f.ConsumerName }
func (f Func) Filter() Filter { return f.Accept }
func (f Func) Handle(ctx context.Context, e challenge.Event) error {
	return f.Fn(ctx, e)
}
