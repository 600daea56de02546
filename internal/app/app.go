// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-reading-challenge/internal/bootstrap"
	"github.com/AccelByte/extend-reading-challenge/internal/config"
	"github.com/AccelByte/extend-reading-challenge/internal/server"
	"github.com/AccelByte/extend-reading-challenge/pkg/common"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"
	"github.com/AccelByte/extend-reading-challenge/pkg/handler"
	"github.com/AccelByte/extend-reading-challenge/pkg/service"
	"github.com/cenkalti/backoff/v4"

	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/factory"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/iam"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	sdkAuth "github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/utils/auth"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	challenge         *bootstrap.Challenge
	consumers         *event.Runner
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	shutdownTelemetry func(context.Context) error

	// AccelByte SDK repositories (shared across all services)
	configRepo *sdkAuth.ConfigRepositoryImpl
	tokenRepo  *sdkAuth.TokenRepositoryImpl
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
//  1. Logging (level and format from config)
//  2. Redis, when REDIS_ENABLED (event fan-out, result archive)
//  3. AccelByte SDK, when AB_STATS_ENABLED (winner statistics)
//  4. Challenge machine, broadcaster and metrics
//  5. Command facade (config/commands.yaml)
//  6. Event consumers (Redis, AGS, session log)
//  7. Servers (gRPC, metrics)
//  8. Telemetry (OpenTelemetry tracing)
//
// If you add new external dependencies, initialize them before
// step 6 and hand them to bootstrap.InitConsumers.
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := common.ConfigureLogger(logrus.StandardLogger(), cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 2: Initialize Redis
	// ============================================================
	if cfg.RedisEnabled {
		if err := app.initRedis(ctx); err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
	} else {
		logrus.Info("Redis disabled, events are not published or archived")
	}

	// ============================================================
	// Step 3: Initialize Client Auth using AccelByte SDK
	// ============================================================
	var statUpdater service.StatisticUpdater
	if cfg.ABStatsEnabled {
		if err := app.initAccelByteSDKAuth(); err != nil {
			return nil, fmt.Errorf("failed to init AccelByte SDK: %w", err)
		}
		statUpdater = app.initStatisticService()
	} else {
		logrus.Info("AccelByte statistics disabled")
	}

	// ============================================================
	// Step 4: Challenge machine and event fan-out
	// ============================================================
	app.challenge = bootstrap.InitChallenge(cfg.Policy(), cfg.SubscriberBuffer)

	// ============================================================
	// Step 5: Command facade
	// ============================================================
	facade, _, err := bootstrap.InitCommandFacade(cfg.CommandsConfigPath, app.challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to init command facade: %w", err)
	}

	// ============================================================
	// Step 6: Event consumers
	// ============================================================
	deps := bootstrap.ConsumerDependencies{
		EventChannel:          cfg.RedisEventChannel,
		ResultHistory:         cfg.RedisResultHistory,
		StatUpdater:           statUpdater,
		WinsStatCode:          cfg.ABWinsStatCode,
		ParticipationStatCode: cfg.ABParticipationStatCode,
	}
	if app.redisClient != nil {
		deps.RedisClient = app.redisClient
	}
	app.consumers, err = bootstrap.InitConsumers(app.challenge, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to init event consumers: %w", err)
	}

	// ============================================================
	// Step 7: Setup servers
	// ============================================================
	challengeHandler := handler.NewChallenge(facade, app.challenge.Machine, app.challenge.Broadcaster)
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, challengeHandler)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics", app.challenge.Metrics)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 8: Setup telemetry
	// ============================================================
	shutdownTelemetry, err := server.SetupTelemetry(ctx, server.TelemetryConfig{
		Enabled:        cfg.OtelEnabled,
		ZipkinEndpoint: cfg.OtelZipkinEndpoint,
		ServiceName:    cfg.ServiceName,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	app.shutdownTelemetry = shutdownTelemetry

	logrus.Info("application initialized successfully")

	return app, nil
}

// initAccelByteSDKAuth initializes the AccelByte SDK auth by performing client login.
//
// ============================================================
// DEVELOPER: AccelByte Client Auth configuration
// ============================================================
// The Client Auth is configured via environment variables:
//   - AB_BASE_URL: AccelByte platform base URL
//   - AB_CLIENT_ID: OAuth2 client ID
//   - AB_CLIENT_SECRET: OAuth2 client secret
//   - AB_NAMESPACE: Game namespace
//
// The SDK uses automatic token refresh (RefreshRate: 0.8 = 80% of TTL).
//
// IMPORTANT: The configRepo and tokenRepo are stored in the App struct
// and must be reused by all AccelByte services to share authentication.
// ============================================================
func (a *App) initAccelByteSDKAuth() error {
	a.configRepo = sdkAuth.DefaultConfigRepositoryImpl()
	a.tokenRepo = sdkAuth.DefaultTokenRepositoryImpl()
	refreshRepo := &sdkAuth.RefreshTokenImpl{AutoRefresh: true, RefreshRate: 0.8}

	oauthService := iam.OAuth20Service{
		Client:                 factory.NewIamClient(a.configRepo),
		ConfigRepository:       a.configRepo,
		TokenRepository:        a.tokenRepo,
		RefreshTokenRepository: refreshRepo,
	}

	clientID := a.configRepo.GetClientId()
	clientSecret := a.configRepo.GetClientSecret()

	if err := oauthService.LoginClient(&clientID, &clientSecret); err != nil {
		return fmt.Errorf("unable to login using clientId and clientSecret: %w", err)
	}

	logrus.Info("AccelByte SDK initialized and authenticated")
	return nil
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))
	health := service.NewRedisHealthChecker(client)

	err := backoff.Retry(
		func() error {
			if err := health.Check(ctx); err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		backoff.WithContext(maxRetries, ctx),
	)

	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// initStatisticService initializes the statistic service client.
//
// IMPORTANT: Reuses a.configRepo and a.tokenRepo to share the authenticated
// session from initAccelByteSDKAuth(). Do NOT create new repository instances.
func (a *App) initStatisticService() service.StatisticUpdater {
	statisticService := &social.UserStatisticService{
		Client:           factory.NewSocialClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}

	return service.NewStatisticService(statisticService,
		service.StatisticServiceConfig{
			Namespace: a.cfg.ABNamespace,
		})
}
