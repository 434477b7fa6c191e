package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/api"
	"github.com/vultisig/inform-ai/internal/cache/redis"
	"github.com/vultisig/inform-ai/internal/config"
	"github.com/vultisig/inform-ai/internal/service"
	"github.com/vultisig/inform-ai/internal/service/relay"
	"github.com/vultisig/inform-ai/internal/storage/memory"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("failed to read .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	// Configure log format
	if cfg.TextLogs() {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("starting inform-ai server")

	// Redis fan-out is optional
	var publisher api.EventPublisher
	if cfg.Redis.URI != "" {
		redisClient, err := redis.New(cfg.Redis.URI, cfg.Redis.ChannelPrefix)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		publisher = redisClient
		logger.WithField("prefix", cfg.Redis.ChannelPrefix).Info("publishing component events to redis")
	}

	// Initialize services
	authService := service.NewAuthService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	relayService := relay.NewService(logger)

	// Initialize repositories
	sessions := memory.NewSessionRepository(api.EventNotifier(publisher, logger), logger)
	defer sessions.Close()

	// Initialize API server
	server := api.NewServer(authService, sessions, relayService, api.StreamOptions{
		BufferSize:     cfg.Stream.BufferSize,
		OriginPatterns: cfg.Stream.OriginPatterns,
	}, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Add middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(api.RequestLogger(logger))

	server.Routes(e)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}

	logger.Info("server stopped")
}
