// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package command

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// HandlerFactory creates a handler from its configuration.
type HandlerFactory func(config CommandConfig) (Handler, error)

var (
	factoriesMu sync.RWMutex
	// factories stores registered handler factories by type
	factories = make(map[string]HandlerFactory)
)

// RegisterCommandType registers a factory function for a command type.
// This allows external packages to register their command types without creating import cycles.
func RegisterCommandType(commandType string, factory HandlerFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[commandType] = factory
	logrus.Debugf("registered command type: %s", commandType)
}

// CreateHandler creates a handler instance based on the configuration.
// Disabled commands return a nil handler and no error.
func CreateHandler(config CommandConfig) (Handler, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled command: %s", config.ID)
		return nil, nil
	}

	factoriesMu.RLock()
	factory, exists := factories[config.Type]
	factoriesMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown command type: %s", config.Type)
	}

	logrus.Debugf("creating command: id=%s, type=%s", config.ID, config.Type)
	return factory(config)
}

// CreateHandlers creates handlers from a list of configurations.
// Returns all successfully created handlers and any errors encountered.
func CreateHandlers(configs []CommandConfig) ([]Handler, []error) {
	var handlers []Handler
	var errs []error

	for _, config := range configs {
		h, err := CreateHandler(config)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create command %s: %w", config.ID, err))
			continue
		}

		if h != nil {
			handlers = append(handlers, h)
		}
	}

	return handlers, errs
}

// RegisterCommands creates handlers from configs and registers them.
// Any creation error fails the whole call.
func RegisterCommands(registry *Registry, configs []CommandConfig) error {
	handlers, errs := CreateHandlers(configs)
	if len(errs) > 0 {
		for _, err := range errs {
			logrus.Errorf("command creation error: %v", err)
		}
		return fmt.Errorf("failed to create %d command(s): %w", len(errs), errs[0])
	}

	for _, h := range handlers {
		if err := registry.Register(h); err != nil {
			return fmt.Errorf("failed to register command %s: %w", h.ID(), err)
		}
	}

	logrus.Infof("registered %d commands", len(handlers))
	return nil
}
