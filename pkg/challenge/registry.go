// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"fmt"
	"time"
)

// Participant is a single registered reader.
type Participant struct {
	Identity          string    `json:"identity"`
	InitialProgress   int       `json:"initialProgress"`
	CurrentProgress   int       `json:"currentProgress"`
	HasSubmittedFinal bool      `json:"hasSubmittedFinal"`
	JoinedAt          time.Time `json:"joinedAt"`
}

// Registry keeps participants keyed by identity in registration order.
// It is not safe for concurrent use; the Machine serializes access.
type Registry struct {
	order   []string
	records map[string]*Participant
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Participant),
	}
}

// Insert adds a participant.
// Returns an error if the identity is already registered.
func (r *Registry) Insert(p Participant) error {
	if _, exists := r.records[p.Identity]; exists {
		return fmt.Errorf("participant %s already registered", p.Identity)
	}

	record := p
	r.records[p.Identity] = &record
	r.order = append(r.order, p.Identity)
	return nil
}

// Remove deletes a participant.
// Returns an error if the identity is not registered.
func (r *Registry) Remove(identity string) error {
	if _, exists := r.records[identity]; !exists {
		return fmt.Errorf("participant %s not found", identity)
	}

	delete(r.records, identity)
	for i, id := range r.order {
		if id == identity {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Update applies fn to the stored record in place.
// Returns an error if the identity is not registered.
func (r *Registry) Update(identity string, fn func(p *Participant)) error {
	record, exists := r.records[identity]
	if !exists {
		return fmt.Errorf("participant %s not found", identity)
	}

	fn(record)
	// identity is the key and must not be rewritten
	record.Identity = identity
	return nil
}

// Get returns a copy of the participant record.
func (r *Registry) Get(identity string) (Participant, bool) {
	record, exists := r.records[identity]
	if !exists {
		return Participant{}, false
	}
	return *record, true
}

// Contains reports whether identity is registered.
func (r *Registry) Contains(identity string) bool {
	_, exists := r.records[identity]
	return exists
}

// Clear removes every participant.
func (r *Registry) Clear() {
	r.order = nil
	r.records = make(map[string]*Participant)
}

// All returns copies of every record in registration order.
func (r *Registry) All() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.records[id])
	}
	return out
}

// Identities returns the registered identities in registration order.
func (r *Registry) Identities() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of participants.
func (r *Registry) Len() int {
	return len(r.order)
}

// AllSubmitted reports whether every participant has sent final progress.
// An empty registry is vacuously all-submitted.
func (r *Registry) AllSubmitted() bool {
	for _, record := range r.records {
		if !record.HasSubmittedFinal {
			return false
		}
	}
	return true
}
