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
	"github.com/insforge/core/internal/config"
	"github.com/insforge/core/internal/httpapi"
	"github.com/insforge/core/internal/infrastructure/wire"
	"github.com/insforge/core/internal/shared/db"
	"github.com/insforge/core/internal/shared/logging"
	"github.com/insforge/core/internal/shared/middleware"
	"github.com/insforge/core/internal/shared/redis"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}

	slogger, clickHouse, err := logging.InitializeLogging(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}

	database, err := db.Connect(cfg.Database, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		slogger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(&cfg.Redis, slogger)
	if err != nil {
		slogger.Warn("redis unavailable, oauth login is disabled", "error", err)
		redisClient = nil
	}

	app, err := wire.Build(cfg, database, redisClient, slogger, clickHouse)
	if err != nil {
		slogger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if cfg.Secrets.AccessAPIKey != "" {
		if err := app.Secrets.InitializeApiKey(context.Background(), cfg.Secrets.AccessAPIKey); err != nil {
			slogger.Warn("failed to seed ACCESS_API_KEY", "error", err)
		}
	}

	if cfg.Server.Host == "0.0.0.0" && os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.StructuredLogger(slogger))
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, x-api-key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
	router.GET("/ready", func(c *gin.Context) {
		sqlDB, err := database.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	httpapi.RegisterRoutes(router, app)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		slogger.Info("starting http server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slogger.Error("server forced to shutdown", "error", err)
	}
	slogger.Info("server exited")
}
