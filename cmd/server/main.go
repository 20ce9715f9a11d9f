package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api"
	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
	"github.com/uriel-reyes/sellertools-sub000/internal/task"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting seller console API",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Platform GraphQL client
	client := ctp.NewClient(cfg.Platform, logger)

	// Wire services
	checkpoints := service.NewRemoteCheckpointStore(client, logger)
	services := &service.Services{
		Sessions:      service.NewSessionService(client, cfg.Session, logger),
		BusinessUnits: service.NewBusinessUnitService(client, logger),
		Orders:        service.NewOrderService(client, logger),
		Customers:     service.NewCustomerService(client, logger),
		Products:      service.NewProductService(client, logger),
		Prices:        service.NewPriceService(client, checkpoints, cfg.Price.SettleDelay, logger),
		Promotions:    service.NewPromotionService(client, logger),
		Reports:       service.NewReportService(client, logger),
		Assistant:     service.NewAssistantService(cfg.Assistant, logger),
	}

	// Initialize router
	router := api.NewRouter(cfg, services, logger)

	// CORS wraps the whole router so preflights never hit the session check
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Stale price workflow sweeper
	sweeper := task.NewSweeper(services.Prices, cfg.Price, logger)
	if err := sweeper.Start(cfg.Price.SweepInterval); err != nil {
		logger.Fatal("Failed to start price workflow sweeper", zap.Error(err))
	}
	logger.Info("Price workflow sweeper started", zap.String("schedule", cfg.Price.SweepInterval))

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	sweeper.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
