// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-reading-challenge/pkg/command"
	commandBuiltin "github.com/AccelByte/extend-reading-challenge/pkg/command/builtin"
	"github.com/sirupsen/logrus"
)

// InitCommandFacade loads the command configuration and builds the facade
// that routes chat commands to the machine.
//
// ============================================================
// DEVELOPER: Register custom command types here.
// ============================================================
// Steps to add a new command:
//  1. Create your handler in pkg/command/builtin/ (see examples)
//  2. Implement the command.Handler interface
//  3. Register the command type in pkg/command/builtin/init.go
//  4. Add the command to config/commands.yaml
//
// Verbs and aliases come from config/commands.yaml, so renaming
// a command never needs a code change.
// ============================================================
func InitCommandFacade(configPath string, c *Challenge) (*command.Facade, *command.Registry, error) {
	config, err := command.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load command config from %s: %w", configPath, err)
	}
	logrus.Infof("loaded command configuration from %s", configPath)

	registry := command.NewRegistry()

	// ============================================================
	// DEVELOPER: Command registration
	// ============================================================
	// This registers all command factories defined in pkg/command/builtin/init.go
	// ============================================================
	commandBuiltin.RegisterCommands(&commandBuiltin.Dependencies{
		Session:  c.Machine,
		Registry: registry,
	})

	if err := command.RegisterCommands(registry, config.Commands); err != nil {
		return nil, nil, fmt.Errorf("failed to register commands: %w", err)
	}
	logrus.Infof("registered %d commands", registry.Count())

	facade := command.NewFacade(registry,
		command.WithRejectionSink(c.Sink),
		command.WithObserver(c.Metrics),
	)

	return facade, registry, nil
}
