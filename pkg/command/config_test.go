// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package command

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("TEST_JOIN_ENABLED", "false")

	data := []byte(`
commands:
  - id: babble
    type: builtin.start
    enabled: true
    aliases: [start]
    usage: "/babble"
    description: "starts ${TEST_UNSET_VAR:in a minute}"
  - id: join
    type: builtin.join
    enabled: ${TEST_JOIN_ENABLED:true}
    parameters:
      quiet_keyword: softly
      tags: [a, b]
`)

	config, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if len(config.Commands) != 2 {
		t.Fatalf("Expected 2 commands, got %d", len(config.Commands))
	}
	start := config.Commands[0]
	if start.Description != "starts in a minute" {
		t.Errorf("Expected default expansion, got %q", start.Description)
	}
	if len(start.Aliases) != 1 || start.Aliases[0] != "start" {
		t.Errorf("Expected alias start, got %v", start.Aliases)
	}

	join := config.Commands[1]
	if join.Enabled {
		t.Error("Expected join disabled from environment")
	}
	if got := join.GetParameterString("quiet_keyword", "quietly"); got != "softly" {
		t.Errorf("Expected softly, got %s", got)
	}
	if got := join.GetParameterString("missing", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
	if got := join.GetParameterStringSlice("tags", nil); len(got) != 2 || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
	if got := join.GetParameterBool("missing", true); !got {
		t.Error("Expected bool default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid",
			config: Config{Commands: []CommandConfig{
				{ID: "join", Type: "builtin.join"},
				{ID: "drop", Type: "builtin.drop", Aliases: []string{"leave"}},
			}},
		},
		{
			name:    "empty id",
			config:  Config{Commands: []CommandConfig{{Type: "builtin.join"}}},
			wantErr: true,
		},
		{
			name: "duplicate id",
			config: Config{Commands: []CommandConfig{
				{ID: "join", Type: "builtin.join"},
				{ID: "join", Type: "builtin.join"},
			}},
			wantErr: true,
		},
		{
			name:    "empty type",
			config:  Config{Commands: []CommandConfig{{ID: "join"}}},
			wantErr: true,
		},
		{
			name: "alias collides with id",
			config: Config{Commands: []CommandConfig{
				{ID: "join", Type: "builtin.join"},
				{ID: "drop", Type: "builtin.drop", Aliases: []string{"JOIN"}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseConfig_InvalidWrapsSentinel(t *testing.T) {
	_, err := ParseConfig([]byte("commands:\n  - id: join\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	if _, err := ParseConfig([]byte("commands: [")); err == nil {
		t.Error("Expected YAML error")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	if err := os.WriteFile(path, []byte("commands:\n  - id: help\n    type: builtin.help\n    enabled: true\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(config.Commands) != 1 || config.Commands[0].ID != "help" {
		t.Errorf("Unexpected config %+v", config)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfig_RepositoryDefault(t *testing.T) {
	config, err := LoadConfig(filepath.Join("..", "..", "config", "commands.yaml"))
	if err != nil {
		t.Fatalf("Failed to load repository config: %v", err)
	}

	ids := make(map[string]bool)
	for _, c := range config.Commands {
		ids[c.ID] = true
	}
	for _, want := range []string{"babble", "join", "drop", "progress", "timer", "participants", "skip", "end", "help"} {
		if !ids[want] {
			t.Errorf("Expected command %s in repository config", want)
		}
	}
}
