// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package command

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete command configuration.
type Config struct {
	Commands []CommandConfig `yaml:"commands"`
}

// CommandConfig configures one command handler.
type CommandConfig struct {
	ID          string                 `yaml:"id" json:"id"`
	Type        string                 `yaml:"type" json:"type"` // e.g., "builtin.join"
	Enabled     bool                   `yaml:"enabled" json:"enabled"`
	Aliases     []string               `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Usage       string                 `yaml:"usage" json:"usage"`
	Description string                 `yaml:"description" json:"description"`
	Parameters  map[string]interface{} `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// GetParameterString retrieves a string parameter with a default.
func (c *CommandConfig) GetParameterString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetParameterBool retrieves a boolean parameter with a default.
func (c *CommandConfig) GetParameterBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// GetParameterStringSlice retrieves a string slice parameter with a default.
func (c *CommandConfig) GetParameterStringSlice(key string, defaultValue []string) []string {
	if val, ok := c.Parameters[key]; ok {
		if sliceVal, ok := val.([]string); ok {
			return sliceVal
		}
		if interfaceSlice, ok := val.([]interface{}); ok {
			result := make([]string, 0, len(interfaceSlice))
			for _, item := range interfaceSlice {
				if str, ok := item.(string); ok {
					result = append(result, str)
				}
			}
			return result
		}
	}
	return defaultValue
}

// LoadConfig loads command configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates YAML command configuration.
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// Validate checks for empty and duplicate IDs and for verbs claimed twice.
func (c *Config) Validate() error {
	verbs := make(map[string]string)
	ids := make(map[string]bool)

	for _, cmd := range c.Commands {
		if cmd.ID == "" {
			return fmt.Errorf("command with empty ID found")
		}
		if ids[cmd.ID] {
			return fmt.Errorf("duplicate command ID: %s", cmd.ID)
		}
		ids[cmd.ID] = true

		if cmd.Type == "" {
			return fmt.Errorf("command %s has empty type", cmd.ID)
		}

		for _, verb := range append([]string{cmd.ID}, cmd.Aliases...) {
			verb = strings.ToLower(verb)
			if owner, taken := verbs[verb]; taken {
				return fmt.Errorf("verb %s of command %s already used by %s", verb, cmd.ID, owner)
			}
			verbs[verb] = cmd.ID
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
