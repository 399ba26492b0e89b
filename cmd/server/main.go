package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/api"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/api/handlers"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/cache"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/config"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/database"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/logging"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/services"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/telemetry"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/upstream"
)

func main() {
	// Load .env if present; real deployments use environment variables.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stdLogger := logging.NewStandardLogger(cfg.LogLevel, cfg.Environment)
	logger := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize tracing
	ctx := context.Background()
	provider, err := telemetry.Init(ctx, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Initialize Redis. The cache is an optimization: if Redis is down the
	// service still serves straight from the upstream.
	var priceCache *cache.PriceCache
	var analytics *services.CacheAnalyticsService
	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis unavailable, serving without cache: %v", err)
	} else {
		defer redisClient.Close()
		priceCache = cache.NewPriceCache(redisClient, logger)
		analytics = services.NewCacheAnalyticsService(redisClient.Client)
		analytics.StartPeriodicReporting(ctx, 5*time.Minute)
	}

	fetcher := upstream.NewClient(&cfg.Upstream, logger)

	priceHandler := handlers.NewPriceHandler(
		fetcher,
		services.NewNormalizer(),
		services.NewInsightsEngine(),
		services.NewHistoricalSynthesizer(),
		priceCache,
		analytics,
		cfg.MarketData,
		logger,
	)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())

	api.SetupRoutes(router, api.Handlers{
		Prices: priceHandler,
		Cache:  handlers.NewCacheHandler(analytics, priceCache),
		Health: handlers.NewHealthHandler(redisClient, telemetry.ServiceVersion),
	}, priceCache, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		stdLogger.LogStartup(telemetry.ServiceName, telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stdLogger.LogShutdown(telemetry.ServiceName, "signal received")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Failed to shut down telemetry: %v", err)
	}

	log.Println("Server exited")
}
