package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/noteduco342/om-receipts/internal/cache"
	"github.com/noteduco342/om-receipts/internal/config"
	"github.com/noteduco342/om-receipts/internal/handlers"
	"github.com/noteduco342/om-receipts/internal/logging"
	"github.com/noteduco342/om-receipts/internal/middleware"
	"github.com/noteduco342/om-receipts/internal/repository"
	"github.com/noteduco342/om-receipts/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("production", "info")
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := repository.InitDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}

	// Redis is optional; without it account status is read from the database.
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Msg("redis connection failed, running without cache")
			_ = redisCache.Close()
			redisCache = nil
		} else {
			logger.Info().Str("addr", cfg.RedisAddr).Msg("redis cache connected")
		}
		cancel()
	}
	accountCache := cache.NewAccountCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	readMarkRepo := repository.NewReadMarkRepository(db)
	groupReadStateRepo := repository.NewGroupReadStateRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, accountCache)
	messageService := service.NewMessageService(messageRepo, groupRepo, userRepo, readMarkRepo, groupReadStateRepo)
	groupService := service.NewGroupService(groupRepo, groupReadStateRepo, userRepo)
	receiptService := service.NewReadReceiptService(messageService, readMarkRepo)

	app := fiber.New(fiber.Config{
		AppName:   "OM Receipts",
		BodyLimit: 1 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-OM-CSRF",
		AllowMethods:     "GET, POST, PATCH, OPTIONS",
		AllowCredentials: cfg.AllowedOrigins != "",
	}))

	handlers.SetupRoutes(app, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService, logger),
		User:        handlers.NewUserHandler(userService, logger),
		Group:       handlers.NewGroupHandler(groupService, logger),
		Message:     handlers.NewMessageHandler(messageService, logger),
		ReadReceipt: handlers.NewReadReceiptHandler(receiptService, logger),
	}, handlers.RouteConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.Origins(),
		CSRFMode:       cfg.CSRFMode,
		AccountLookup:  userService.AccountStatus,
		AuthRateLimit:  20,
	})

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
