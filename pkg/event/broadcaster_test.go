// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package event

import (
	"testing"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

func evt(typ challenge.EventType) challenge.Event {
	return challenge.Event{Type: typ, SessionID: "s1"}
}

func drain(sub *Subscription) []challenge.EventType {
	var out []challenge.EventType
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, e.Type)
		default:
			return out
		}
	}
}

func TestBroadcaster_FanOutInOrder(t *testing.T) {
	b := NewBroadcaster()
	first := b.Subscribe("first", nil)
	second := b.Subscribe("second", nil)

	b.Publish(evt(challenge.EventSessionScheduled), evt(challenge.EventParticipantJoined))
	b.Publish(evt(challenge.EventSessionStarted))

	for _, sub := range []*Subscription{first, second} {
		got := drain(sub)
		want := []challenge.EventType{
			challenge.EventSessionScheduled,
			challenge.EventParticipantJoined,
			challenge.EventSessionStarted,
		}
		if len(got) != len(want) {
			t.Fatalf("%s: expected %v, got %v", sub.Name(), want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: expected %v, got %v", sub.Name(), want, got)
			}
		}
	}
}

func TestBroadcaster_Filter(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe("lifecycle", LifecycleOnly)

	b.Publish(
		evt(challenge.EventSessionScheduled),
		evt(challenge.EventParticipantJoined),
		evt(challenge.EventCommandRejected),
		evt(challenge.EventScoreboardReady),
	)

	got := drain(sub)
	if len(got) != 2 || got[0] != challenge.EventSessionScheduled || got[1] != challenge.EventScoreboardReady {
		t.Errorf("Expected lifecycle events only, got %v", got)
	}
}

func TestBroadcaster_FullBufferDoesNotBlock(t *testing.T) {
	var dropped []challenge.EventType
	b := NewBroadcaster(
		WithSubscriberCapacity(2),
		WithDropHandler(func(subscriber string, e challenge.Event) {
			if subscriber != "slow" {
				t.Errorf("Expected drop for slow, got %s", subscriber)
			}
			dropped = append(dropped, e.Type)
		}),
	)
	sub := b.Subscribe("slow", nil)

	b.Publish(
		evt(challenge.EventParticipantJoined),
		evt(challenge.EventParticipantJoined),
		evt(challenge.EventParticipantDropped),
	)
	if len(dropped) != 1 || dropped[0] != challenge.EventParticipantDropped {
		t.Fatalf("Expected incoming acknowledgement dropped, got %v", dropped)
	}

	// a lifecycle event evicts the oldest queued event instead
	b.Publish(evt(challenge.EventScoreboardReady))
	if len(dropped) != 2 || dropped[1] != challenge.EventParticipantJoined {
		t.Fatalf("Expected oldest evicted, got %v", dropped)
	}

	got := drain(sub)
	if len(got) != 2 || got[1] != challenge.EventScoreboardReady {
		t.Errorf("Expected scoreboard kept, got %v", got)
	}
	if b.Dropped() != 2 {
		t.Errorf("Expected 2 dropped events counted, got %d", b.Dropped())
	}
}

func TestBroadcaster_CloseSubscription(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe("gone", nil)
	sub.Close()
	sub.Close()

	if b.Count() != 0 {
		t.Errorf("Expected no subscribers, got %d", b.Count())
	}
	if _, ok := <-sub.Events(); ok {
		t.Error("Expected closed channel")
	}

	b.Publish(evt(challenge.EventSessionStarted))
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe("a", nil)
	b.Close()

	if _, ok := <-sub.Events(); ok {
		t.Error("Expected closed channel after broadcaster close")
	}
	sub.Close()

	late := b.Subscribe("late", nil)
	if _, ok := <-late.Events(); ok {
		t.Error("Expected late subscription to be closed")
	}
	b.Publish(evt(challenge.EventSessionStarted))
}
