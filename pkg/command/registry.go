// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package command

import (
	"fmt"
	"strings"
	"sync"
)

// Registry manages available command handlers keyed by verb and alias.
// It provides thread-safe registration and lookup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	verbs    map[string]string
	order    []string
}

// NewRegistry creates a new empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		verbs:    make(map[string]string),
	}
}

// Register adds a handler under its ID and aliases.
// Returns an error if the ID or any alias is already taken.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := strings.ToLower(h.ID())
	if _, exists := r.handlers[id]; exists {
		return fmt.Errorf("command %s already registered", id)
	}

	verbs := []string{id}
	for _, alias := range h.Config().Aliases {
		verbs = append(verbs, strings.ToLower(alias))
	}
	for _, verb := range verbs {
		if owner, taken := r.verbs[verb]; taken {
			return fmt.Errorf("verb %s already registered by command %s", verb, owner)
		}
	}

	r.handlers[id] = h
	for _, verb := range verbs {
		r.verbs[verb] = id
	}
	r.order = append(r.order, id)
	return nil
}

// Lookup returns the handler serving verb, by ID or alias.
// Returns nil if no handler serves the verb.
func (r *Registry) Lookup(verb string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.verbs[strings.ToLower(verb)]
	if !ok {
		return nil
	}
	return r.handlers[id]
}

// GetAll returns all handlers in registration order.
func (r *Registry) GetAll() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make([]Handler, 0, len(r.order))
	for _, id := range r.order {
		handlers = append(handlers, r.handlers[id])
	}
	return handlers
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}
