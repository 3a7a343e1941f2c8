package main

import (
	"context"
	"flag"
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prizewheel/internal/config"
	"prizewheel/internal/handlers"
	"prizewheel/internal/metrics"
	"prizewheel/internal/services"
	"prizewheel/internal/storage"
	"prizewheel/internal/wheel"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	defer logger.Init("prizewheel", cfg.Server.Verbose, false, io.Discard).Close()

	ctx := context.Background()

	// 1. Open the prize store
	blobs, cleanup, err := openStore(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.Storage.Driver, err)
	}
	defer cleanup()

	// 2. Initialize the wheel service and restore the saved prizes
	wheelService := services.NewWheelService(
		storage.NewPrizeRepository(blobs),
		wheel.NewEngine(wheel.WithDuration(cfg.Wheel.SpinDuration)),
		services.Options{
			Defaults:   cfg.Defaults,
			Passphrase: cfg.Admin.Passphrase,
			SessionTTL: cfg.Admin.SessionTTL,
			MinPrizes:  cfg.Admin.MinPrizes,
			MaxPrizes:  cfg.Admin.MaxPrizes,
			Metrics:    metrics.New(prometheus.DefaultRegisterer),
		},
	)
	if err := wheelService.Load(ctx); err != nil {
		logger.Fatalf("Failed to load prizes: %v", err)
	}

	// 3. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(wheelService, cfg.Admin.CookieName, promhttp.Handler())

	// 4. Set up the Gin router
	r := gin.Default()

	// 5. Register public routes (before middleware)
	httpHandler.RegisterPublicRoutes(r)

	// 6. Group the prize editor routes behind the admin session check
	adminRoutes := r.Group("/api/admin")
	adminRoutes.Use(httpHandler.AdminMiddleware())
	httpHandler.RegisterAdminRoutes(adminRoutes)

	// 7. Start the background janitor to clean up inactive admin sessions
	go func() {
		for {
			time.Sleep(10 * time.Minute) // Run every 10 minutes
			wheelService.CleanUpInactiveSessions()
		}
	}()

	// 8. Run the server
	logger.Infof("Server starting on %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, func(), error) {
	switch cfg.Driver {
	case "redis":
		rdb, cleanup, err := storage.NewRedisClient(ctx, storage.RedisOptions{
			Addrs:        cfg.Redis.Addrs,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(rdb, cfg.Key), cleanup, nil
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return storage.NewFileStore(cfg.Path), func() {}, nil
	}
}
