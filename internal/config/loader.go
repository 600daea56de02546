// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
//
// ============================================================
// DEVELOPER: Add custom validation logic here.
// ============================================================
// This function is called after environment variables are parsed.
// ============================================================
func (c *Config) Validate() error {
	// Validate server ports
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT: %d (must be 1-65535)", c.GRPCPort)
	}

	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 1-65535)", c.MetricsPort)
	}

	// Validate challenge defaults
	if c.DefaultStartInMinutes < 0 {
		return fmt.Errorf("invalid CHALLENGE_DEFAULT_START_IN: %d (must be >= 0)", c.DefaultStartInMinutes)
	}
	if c.DefaultDurationMinutes < 0 {
		return fmt.Errorf("invalid CHALLENGE_DEFAULT_DURATION: %d (must be >= 0)", c.DefaultDurationMinutes)
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("invalid CHALLENGE_GRACE_PERIOD: %s (must be positive)", c.GracePeriod)
	}
	if c.CommandsConfigPath == "" {
		return fmt.Errorf("COMMANDS_CONFIG_PATH is required")
	}

	if c.RedisMaxRetries < 0 {
		return fmt.Errorf("invalid REDIS_MAX_RETRIES: %d (must be >= 0)", c.RedisMaxRetries)
	}
	if c.RedisEnabled && c.RedisResultHistory < 1 {
		return fmt.Errorf("invalid REDIS_RESULT_HISTORY: %d (must be >= 1)", c.RedisResultHistory)
	}

	// Validate AccelByte fields only when statistics are enabled
	if c.ABStatsEnabled {
		required := []struct{ name, value string }{
			{"AB_NAMESPACE", c.ABNamespace},
			{"AB_BASE_URL", c.ABBaseURL},
			{"AB_CLIENT_ID", c.ABClientID},
			{"AB_CLIENT_SECRET", c.ABClientSecret},
		}
		for _, field := range required {
			if field.value == "" {
				return fmt.Errorf("%s is required when AB_STATS_ENABLED is true", field.name)
			}
		}
	}

	return nil
}

// Policy returns the session timing policy derived from the configuration.
func (c *Config) Policy() challenge.Policy {
	return challenge.Policy{
		DefaultStartInMinutes:  c.DefaultStartInMinutes,
		DefaultDurationMinutes: c.DefaultDurationMinutes,
		GracePeriod:            c.GracePeriod,
	}
}
