package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkwise/api/routes"
	"parkwise/internal/allocation"
	"parkwise/internal/dispatch"
	"parkwise/internal/drivers"
	"parkwise/internal/notifications"
	"parkwise/internal/reservations"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/snapshot"
	"parkwise/internal/spots"
	"parkwise/pkg/cache"
	"parkwise/pkg/logger"
	"parkwise/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load environment variables
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		// Check if we're in production/container mode
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	cacheService := cache.NewService(db.GetRedisClient())

	// In-memory lot registry is the source of truth for spot state
	registry := spots.NewRegistry()
	registry.Seed(cfg.Parking.Floors, cfg.Parking.Rows, cfg.Parking.Cols)

	// Restore the last committed state from the durable mirror
	spotRepo := spots.NewRepository(db.GetPostgreSQL())
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 10*time.Second)
	restored, err := spotRepo.LoadAll(restoreCtx)
	restoreCancel()
	if err != nil {
		appLogger.Error("Failed to restore lot state, starting from seeded grid", slog.Any("error", err))
	} else {
		for _, spot := range restored {
			registry.Restore(spot)
		}
		appLogger.Info("Lot state restored", slog.Int("spots", len(restored)))
	}

	// Kafka producer for hardware commands and driver notifications
	var producer notifications.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer, err := notifications.NewKafkaProducer(cfg.Kafka, appLogger)
		if err != nil {
			appLogger.Error("Failed to create Kafka producer, continuing without messaging", slog.Any("error", err))
		} else {
			producer = kafkaProducer
			defer producer.Close()
		}
	} else {
		appLogger.Info("Kafka disabled, commands and notifications will not be published")
	}

	snapshotPublisher := snapshot.NewPublisher(registry, cacheService, cfg, appLogger)

	// Reservation supervisor: evicted reservations free their spot and the
	// lot hardware is told about it
	supervisor := reservations.NewSupervisor(registry, cfg.Parking, func(spot spots.Spot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if producer != nil {
			if err := producer.PublishCommand(ctx, notifications.SpotCommand{
				Action: notifications.ActionFree,
				SpotID: spot.ID,
			}); err != nil {
				appLogger.Error("Failed to publish eviction command", slog.Any("error", err))
			}
		}
		if err := snapshotPublisher.Publish(ctx); err != nil {
			appLogger.Error("Failed to publish snapshot after eviction", slog.Any("error", err))
		}
		if err := spotRepo.Save(ctx, spot); err != nil {
			appLogger.Error("Failed to mirror evicted spot", slog.Any("error", err))
		}
	}, appLogger)
	defer supervisor.Stop()

	// Re-arm timers for reservations that survived the restart
	rearmed := 0
	for _, spot := range registry.Snapshot() {
		if spot.Status == spots.StatusReserved {
			supervisor.OnReserved(spot.ID, 0)
			rearmed++
		}
	}
	if rearmed > 0 {
		appLogger.Info("Re-armed eviction timers for restored reservations", slog.Int("count", rearmed))
	}

	// Notification worker drains assignment messages into driver emails
	if cfg.Kafka.Enabled {
		emailSender := notifications.NewEmailSender(cfg.Email, appLogger)
		consumer, err := notifications.NewConsumer(cfg.Kafka, emailSender, appLogger)
		if err != nil {
			appLogger.Error("Failed to create notification consumer, continuing without email worker", slog.Any("error", err))
		} else {
			consumerCtx, consumerCancel := context.WithCancel(context.Background())
			defer consumerCancel()
			consumer.Start(consumerCtx)
			defer func() {
				appLogger.Info("Stopping notification consumer...")
				if err := consumer.Stop(); err != nil {
					appLogger.Error("Error stopping notification consumer", slog.Any("error", err))
				}
			}()
		}
	}

	// Wire the event dispatcher
	allocator := allocation.NewAllocator(registry, cfg.Parking, appLogger)
	driverService := drivers.NewService(drivers.NewRepository(db.GetPostgreSQL()), cacheService)

	var commandPublisher dispatch.CommandPublisher
	var notifier dispatch.Notifier
	if producer != nil {
		commandPublisher = producer
		notifier = producer
	}

	dispatcher := dispatch.NewService(
		registry,
		allocator,
		supervisor,
		driverService,
		commandPublisher,
		notifier,
		snapshotPublisher,
		spotRepo,
		appLogger,
	)

	// Publish the initial snapshot so the read side is warm before traffic
	initCtx, initCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := snapshotPublisher.Publish(initCtx); err != nil {
		appLogger.Error("Failed to publish initial snapshot", slog.Any("error", err))
	}
	initCancel()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			EventRequests:   cfg.RateLimit.EventRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Setup router with rate limiter
	router := setupRouter(cfg, db, rateLimiter, routes.Deps{
		Registry:   registry,
		Dispatcher: dispatcher,
		Snapshot:   snapshotPublisher,
		Cache:      cacheService,
	})

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("kafka", producer != nil),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, deps routes.Deps) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	// Initialize and setup routes
	appRouter := routes.NewRouter(cfg, db, deps)
	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
