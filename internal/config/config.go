// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// ============================================================
// DEVELOPER: Add new configuration fields here.
// ============================================================
// Use struct tags to define:
//   - `env:"VAR_NAME"` - the environment variable name
//   - `env:",required"` - make it required
//   - `envDefault:"value"` - set a default value
//
// After adding fields here, update loader.go Validate() if custom
// validation is needed.
// ============================================================
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"ExtendReadingChallenge"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// ============================================================
	// Challenge configuration
	// ============================================================
	DefaultStartInMinutes  int           `env:"CHALLENGE_DEFAULT_START_IN" envDefault:"1"`
	DefaultDurationMinutes int           `env:"CHALLENGE_DEFAULT_DURATION" envDefault:"30"`
	GracePeriod            time.Duration `env:"CHALLENGE_GRACE_PERIOD" envDefault:"3m"`
	SubscriberBuffer       int           `env:"CHALLENGE_SUBSCRIBER_BUFFER" envDefault:"64"`
	CommandsConfigPath     string        `env:"COMMANDS_CONFIG_PATH" envDefault:"config/commands.yaml"`

	// ============================================================
	// Redis configuration (event fan-out and result archive)
	// ============================================================
	RedisEnabled       bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost          string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort          string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisMaxRetries    int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisEventChannel  string `env:"REDIS_EVENT_CHANNEL" envDefault:"reading_challenge:events"`
	RedisResultHistory int    `env:"REDIS_RESULT_HISTORY" envDefault:"20"`

	// ============================================================
	// AccelByte configuration (winner statistics)
	// ============================================================
	// The AB_BASE_URL, AB_CLIENT_ID and AB_CLIENT_SECRET variables are
	// read by the AccelByte SDK itself; they are listed here so
	// Validate can report a missing value before login is attempted.
	ABStatsEnabled          bool   `env:"AB_STATS_ENABLED" envDefault:"false"`
	ABNamespace             string `env:"AB_NAMESPACE"`
	ABBaseURL               string `env:"AB_BASE_URL"`
	ABClientID              string `env:"AB_CLIENT_ID"`
	ABClientSecret          string `env:"AB_CLIENT_SECRET"`
	ABWinsStatCode          string `env:"AB_WINS_STAT_CODE" envDefault:"reading-challenge-wins"`
	ABParticipationStatCode string `env:"AB_PARTICIPATION_STAT_CODE" envDefault:"reading-challenge-sessions"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled        bool   `env:"OTEL_ENABLED" envDefault:"true"`
	OtelZipkinEndpoint string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT" envDefault:"http://localhost:9411/api/v2/spans"`

	// ============================================================
	// DEVELOPER: Add your custom configuration fields below
	// ============================================================
}
