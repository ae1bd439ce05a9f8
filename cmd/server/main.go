package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"shwepos/config"
	"shwepos/internal/auth"
	"shwepos/internal/database"
	"shwepos/internal/income"
	"shwepos/internal/notify"
	"shwepos/internal/sales"
	"shwepos/internal/server"
	"shwepos/internal/server/handlers"
	"shwepos/internal/stock"
	"shwepos/internal/utils"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	tokens := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	expo := notify.NewExpoClient(cfg.Expo.PushURL, cfg.Expo.AccessToken, logger)
	publisher := notify.NewPublisher(redisClient)
	dispatcher := notify.NewDispatcher(db, expo, publisher, logger)

	ledger := stock.NewLedger()
	aggregator := income.NewAggregator()
	reports := income.NewReports(db, redisClient, logger)

	h := server.Handlers{
		Auth:      handlers.NewAuthHandler(auth.NewService(db, tokens, logger)),
		Inventory: handlers.NewInventoryHandler(stock.NewInventory(db, ledger, logger)),
		Sales:     handlers.NewSalesHandler(sales.NewService(db, ledger, aggregator, dispatcher, reports, logger)),
		Income:    handlers.NewIncomeHandler(reports),
		Devices:   handlers.NewDevicesHandler(notify.NewRegistry(db, logger)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := notify.NewSweeper(db, expo, logger)
	go sweeper.Run(ctx)

	router, err := server.NewRouter(h, tokens, cfg.Server.RateLimit)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	logger.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
