package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/transactionprocessing/transaction-processor/internal/api_gateway"
	estateclient "github.com/transactionprocessing/transaction-processor/internal/clients/estate"
	"github.com/transactionprocessing/transaction-processor/internal/clients/operator"
	"github.com/transactionprocessing/transaction-processor/internal/config"
	"github.com/transactionprocessing/transaction-processor/internal/data/mongo"
	"github.com/transactionprocessing/transaction-processor/internal/data/postgres"
	"github.com/transactionprocessing/transaction-processor/internal/logger"
	"github.com/transactionprocessing/transaction-processor/internal/platform/messaging/producers"
	"github.com/transactionprocessing/transaction-processor/internal/platform/persistence"
	"github.com/transactionprocessing/transaction-processor/internal/transaction_processor/service"
	"github.com/transactionprocessing/transaction-processor/internal/transaction_processor/validation"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for settlement commands
	commandProducer, err := producers.NewSettlementCommandProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize settlement command Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and external clients
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	balanceRepo := mongo.NewBalanceRepository(log, mongoDB.Database())
	estateClient := estateclient.NewClient(log, &cfg.EstateClient)
	operatorProxy := operator.NewProxy(log, &cfg.OperatorClient)

	// Initialize services
	validator := validation.NewValidator(log, estateClient, balanceRepo)
	processingService := service.NewProcessingService(log, transactionRepo, validator, operatorProxy)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, processingService, commandProducer)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = commandProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
