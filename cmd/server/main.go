package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoshiyanatsu/stock-prediction/internal/cache"
	"github.com/hoshiyanatsu/stock-prediction/internal/clients/yahoo"
	"github.com/hoshiyanatsu/stock-prediction/internal/config"
	"github.com/hoshiyanatsu/stock-prediction/internal/database"
	"github.com/hoshiyanatsu/stock-prediction/internal/modules/charts"
	"github.com/hoshiyanatsu/stock-prediction/internal/modules/forecast"
	"github.com/hoshiyanatsu/stock-prediction/internal/modules/history"
	"github.com/hoshiyanatsu/stock-prediction/internal/scheduler"
	"github.com/hoshiyanatsu/stock-prediction/internal/server"
	"github.com/hoshiyanatsu/stock-prediction/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting stock prediction server")

	// Initialize database
	db, err := database.New(cfg.DatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire services
	yahooClient := yahoo.NewClient(log)
	historyRepo := history.NewRepository(db, log)
	resultCache := cache.New(forecast.CacheTTL)

	forecastService := forecast.NewService(yahooClient, historyRepo, resultCache, log)
	forecastHandler := forecast.NewHandler(forecastService, log)

	chartsService := charts.NewService(historyRepo, log)
	chartsHandler := charts.NewHandler(chartsService, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", scheduler.NewMaintenanceJob(resultCache, historyRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:            cfg.Port,
		Log:             log,
		ForecastHandler: forecastHandler,
		ChartsHandler:   chartsHandler,
		DevMode:         cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
