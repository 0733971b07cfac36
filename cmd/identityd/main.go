package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/creatorly/identity-service/internal/api"
	"github.com/creatorly/identity-service/internal/controller"
	"github.com/creatorly/identity-service/internal/migrations"
	"github.com/creatorly/identity-service/internal/service"
	"github.com/creatorly/identity-service/internal/storage/postgres"
	redisstore "github.com/creatorly/identity-service/internal/storage/redis"
	"github.com/creatorly/identity-service/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, "./internal/migrations"); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	store := postgres.NewStorage(db)
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	sessionConfig := util.NewSessionConfig()
	rateLimiterConfig := util.NewRateLimiterConfig()

	tokenBlacklist := redisstore.NewTokenBlacklist(redisClient)
	loginLimiter := redisstore.NewLoginRateLimiter(
		redisClient,
		rateLimiterConfig.Limit,
		rateLimiterConfig.Interval,
		rateLimiterConfig.BlockTime,
	)

	tokenService := service.NewTokenService(util.NewTokenConfig(), tokenBlacklist)
	webhookService := service.NewWebhookService(logger, util.GetSecurityWebhookURL())
	sessionService := service.NewSessionService(store, tokenService, webhookService, sessionConfig, logger)
	authService := service.NewAuthService(store, tokenService, sessionService, logger)
	profileService := service.NewProfileService(store)
	kycService := service.NewKYCService(store, logger)

	cleanupWorker := service.NewCleanupWorker(sessionService, sessionConfig.CleanupInterval, logger)
	go cleanupWorker.Run(ctx)

	c := controller.NewController(logger, authService, sessionService, profileService, kycService)

	apiServer := api.NewAPI(c, tokenService, loginLimiter, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}
