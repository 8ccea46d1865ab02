package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dispatchday/dispatchday-backend/api/routes"
	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/internal/deliveries"
	"github.com/dispatchday/dispatchday-backend/internal/fields"
	"github.com/dispatchday/dispatchday-backend/internal/notifications"
	"github.com/dispatchday/dispatchday-backend/internal/schedules"
	"github.com/dispatchday/dispatchday-backend/internal/stores"
	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/db"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
	"github.com/dispatchday/dispatchday-backend/pkg/migrate"
	"github.com/dispatchday/dispatchday-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()

	storeService, err := stores.NewService(stores.NewRepository(gormDB), redisClient, cfg.APIKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	scheduleRepo := schedules.NewRepository(gormDB)
	scheduleService, err := schedules.NewService(scheduleRepo, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	fieldService, err := fields.NewService(fields.NewRepository(gormDB), redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create field service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		scheduleRepo,
		fields.NewRepository(gormDB),
		stores.NewRepository(gormDB),
		redisClient,
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(
		deliveries.NewRepository(gormDB),
		checkoutService,
		scheduleRepo,
		notificationsService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			storeService,
			scheduleService,
			fieldService,
			checkoutService,
			deliveryService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
