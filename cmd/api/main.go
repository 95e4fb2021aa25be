package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/broadcast"
	"github.com/skycast-dev/skycast/internal/config"
	"github.com/skycast-dev/skycast/internal/email"
	"github.com/skycast-dev/skycast/internal/handlers"
	"github.com/skycast-dev/skycast/internal/repository"
	"github.com/skycast-dev/skycast/internal/services"
	"github.com/skycast-dev/skycast/internal/weather"
)

func main() {
	// 1) Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// 2) Initialize structured logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	// 3) Open the in-memory subscription registry
	db, err := repository.OpenDB()
	if err != nil {
		logger.Fatal("failed to open subscription registry", zap.Error(err))
	}

	// 4) Initialize the email sender (SMTP or log delivery)
	sender, err := email.NewSender(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize email sender", zap.Error(err))
	}

	// 5) Build the weather fetcher (simulated station, optionally cached)
	weatherFetcher, err := weather.Build(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize weather fetcher", zap.Error(err))
	}

	// 6) Wire up the subscription service
	subRepo := repository.NewSubscriptionRepository(db, logger)
	subSvc := services.NewSubscriptionService(subRepo, sender, weatherFetcher, cfg, logger)

	// 7) Start the update broadcaster. The registry lives in this process,
	// so the publish loop has to run here too.
	broadcaster := broadcast.New(subRepo, weatherFetcher, sender, cfg.BaseURL, logger)
	if err := broadcaster.Start(); err != nil {
		logger.Fatal("failed to start broadcaster", zap.Error(err))
	}

	// 8) Set up Gin router and handlers
	router := gin.Default()
	api := router.Group("/api")
	{
		api.GET("/weather", handlers.WeatherHandler(weatherFetcher))
		api.GET("/forecast", handlers.ForecastHandler(weatherFetcher))
		api.POST("/subscribe", handlers.SubscribeHandler(subSvc))
		api.GET("/confirm/:token", handlers.ConfirmHandler(subSvc))
		api.GET("/unsubscribe/:token", handlers.UnsubscribeHandler(subSvc))
	}

	// 9) Start HTTP server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port
	logger.Info("starting API server", zap.String("address", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
