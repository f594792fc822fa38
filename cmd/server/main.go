package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fastbreakhq/fastbreak/internal/api"
	"github.com/fastbreakhq/fastbreak/internal/api/handlers"
	"github.com/fastbreakhq/fastbreak/internal/api/middleware"
	"github.com/fastbreakhq/fastbreak/internal/features"
	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/predict"
	"github.com/fastbreakhq/fastbreak/internal/providers"
	"github.com/fastbreakhq/fastbreak/internal/services"
	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/config"
	"github.com/fastbreakhq/fastbreak/pkg/database"
	"github.com/fastbreakhq/fastbreak/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger.InitLogger("", cfg.IsDevelopment())
	log := logger.GetLogger()
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Cache documents live on disk with a redis mirror.
	cacheService := services.NewCacheService(redisClient)
	identityRepo := storage.NewTieredStore[identity.Cache](
		storage.NewFileStore[identity.Cache](cfg.DataPath(cfg.PlayerCacheFile)),
		storage.NewRedisStore[identity.Cache](redisClient, "doc:identity"),
	)
	strengthRepo := storage.NewTieredStore[strength.Cache](
		storage.NewFileStore[strength.Cache](cfg.DataPath(cfg.StrengthCacheFile)),
		storage.NewRedisStore[strength.Cache](redisClient, "doc:strength"),
	)

	// Stores
	lineStore := storage.NewLineStore(db)
	featureStore := storage.NewFeatureStore(db)
	injuryStore := storage.NewInjuryStore(db)
	scheduleStore := storage.NewScheduleStore(db)
	snapshotStore := storage.NewSnapshotStore(db)

	// Pipeline stages
	reader := providers.NewExtractReader(log)
	positionClient := providers.NewPositionClient(
		cfg.PositionAPIBaseURL, cfg.PositionAPIInterval, cfg.ExternalAPITimeout, cfg.CircuitBreakerThreshold, log)
	identityBuilder := identity.NewBuilder(identityRepo, log)
	patcher := identity.NewPatcher(identityRepo, positionClient, log)
	strengthBuilder := strength.NewBuilder(strengthRepo, snapshotStore, cfg.StrengthWindow, log)
	featurePipeline := features.NewPipeline(cfg.RecentGamesWindow, log)

	pipeline := services.NewPipelineService(
		cfg, reader, identityBuilder, patcher, strengthBuilder, featurePipeline,
		services.PipelineStores{
			Lines:    lineStore,
			Dataset:  featureStore,
			Injuries: injuryStore,
			Schedule: scheduleStore,
		}, log)

	// Prediction serving
	scorer, err := predict.LoadLinearScorer(cfg.DataPath(cfg.ModelFile))
	if err != nil {
		log.Fatalf("Failed to load scorer artifact: %v", err)
	}
	predictor := predict.NewService(scorer, cfg.TopPredictions, log)
	boards := services.NewBoardService(
		cfg, reader, lineStore, injuryStore, scheduleStore,
		identityBuilder, strengthBuilder, predictor, cacheService, log)

	// Background rebuilds
	scheduler := services.NewSchedulerService(pipeline, cacheService, cfg.RebuildSchedule, log)
	if cfg.EnableBackgroundJobs {
		if err := scheduler.Start(); err != nil {
			log.Errorf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health endpoints at root level
	healthHandler := handlers.NewHealthHandler(db, scheduler)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, api.Dependencies{
		Config:       cfg,
		Boards:       boards,
		Scheduler:    scheduler,
		Identity:     identityBuilder,
		Strength:     strengthBuilder,
		FeatureStore: featureStore,
		Snapshots:    snapshotStore,
		Limiter:      services.NewRequestRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
	})

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
