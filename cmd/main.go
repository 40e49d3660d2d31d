package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itemsync/internal/shared/database"
	"itemsync/internal/shared/eventbus"
	"itemsync/internal/shared/logger"
	"itemsync/internal/shared/metrics"
	synchttp "itemsync/internal/sync/adapter/http"
	"itemsync/internal/sync/adapter/notification"
	"itemsync/internal/sync/adapter/persistence"
	"itemsync/internal/sync/adapter/persistence/mongodb"
	"itemsync/internal/sync/config"
	"itemsync/internal/sync/domain/repository"
	"itemsync/internal/sync/usecase"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()

	syncCfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load sync configuration: %v", err)
	}
	appLogger.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(syncCfg.MongoDBURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	appLogger.Info("MongoDB connection established")

	partitions := database.NewPartitionManager(
		mongoClient.Database(syncCfg.DatabaseName), nil, appLogger)
	recordStore := mongodb.NewMongoRecordStore(partitions, appLogger)

	// Change event delivery: always the in-process bus, plus Redis Streams
	// and the signed webhook when configured.
	bus := eventbus.NewEventBus(appLogger)
	var publishers []repository.ChangeEventPublisher

	if syncCfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: syncCfg.RedisAddr,
			DB:   syncCfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping Redis: %v", err)
		}
		defer redisClient.Close()
		publishers = append(publishers,
			persistence.NewRedisEventPublisher(redisClient, syncCfg.ChangeStream, appLogger))
		appLogger.Info("Redis change stream publisher enabled")
	}

	if syncCfg.Webhook.Endpoint != "" {
		publishers = append(publishers, notification.NewWebhookPublisher(
			syncCfg.Webhook.Endpoint, syncCfg.Webhook.Secret, syncCfg.Webhook.Timeout, appLogger))
		appLogger.Info("Webhook change publisher enabled")
	}

	policy := usecase.DefaultPolicy()
	upsertUC := usecase.NewUpsertUsecaseWithCacheTTL(recordStore, policy, appLogger, syncCfg.ResolveCacheTTL)
	notifierUC := usecase.NewNotifierUsecase(policy, bus, appLogger, publishers...)

	app := fiber.New(fiber.Config{
		AppName:      "Itemsync API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			appLogger.Errorf("HTTP Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Tenant-ID, X-Request-ID",
	}))
	app.Use(synchttp.TenantMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Register(nil)))

	handler := synchttp.NewSyncHTTPHandler(upsertUC, notifierUC, appLogger)
	handler.SetupRoutes(app.Group("/api/v1"))

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
