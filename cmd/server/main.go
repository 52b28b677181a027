// Package main runs the event platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nova-events/backend/config"
	"github.com/nova-events/backend/internal/auth"
	"github.com/nova-events/backend/internal/events"
	"github.com/nova-events/backend/internal/middleware"
	"github.com/nova-events/backend/internal/models"
	"github.com/nova-events/backend/internal/registrations"
	"github.com/nova-events/backend/internal/users"
	"github.com/nova-events/backend/pkg/database"
	"github.com/nova-events/backend/pkg/queue"
	"github.com/nova-events/backend/pkg/redis"
	"github.com/nova-events/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis powers the events-list cache and the email job queue. Both are
	// optional: the API stays up without them.
	var eventCache *events.Cache
	var jobQueue *queue.Queue
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, cache and email queue disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		eventCache = events.NewCache(rdb.Client, logger)
		jobQueue = queue.NewQueue(rdb.Client, logger)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(userRepo, jwtService, jobQueue, logger)

	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, eventCache, logger)

	registrationRepo := registrations.NewRepository(pool)
	registrationHandler := registrations.NewHandler(registrationRepo, eventRepo, jobQueue, logger)

	userHandler := users.NewHandler(userRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.HandleMethodNotAllowed = true
	router.NoMethod(response.MethodNotAllowed)

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}
	// Account deletion is admin-initiated and re-resolves the role from the
	// store before acting.
	router.DELETE("/auth/signup",
		middleware.JWT(jwtService),
		middleware.RequireFreshRole(userRepo, models.RoleAdmin),
		authHandler.DeleteAccount)

	// Events (reads public, mutations admin only)
	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.GetByID)
	// Create re-resolves the role against the store; update and delete trust
	// the token's encoded role.
	router.POST("/events",
		middleware.JWT(jwtService),
		middleware.RequireFreshRole(userRepo, models.RoleAdmin),
		eventHandler.Create)
	router.PUT("/events/:id",
		middleware.JWT(jwtService),
		middleware.RequireRole(models.RoleAdmin),
		eventHandler.Update)
	router.DELETE("/events/:id",
		middleware.JWT(jwtService),
		middleware.RequireRole(models.RoleAdmin),
		eventHandler.Delete)

	// Registrations (authenticated non-admins only)
	router.POST("/events/register",
		middleware.JWT(jwtService),
		middleware.RequireNonAdmin(),
		registrationHandler.Register)
	router.DELETE("/events/register",
		middleware.JWT(jwtService),
		middleware.RequireNonAdmin(),
		registrationHandler.Cancel)

	// Profile (any authenticated user)
	user := router.Group("/user", middleware.JWT(jwtService))
	{
		user.GET("/profile", userHandler.Profile)
		user.PUT("/profile", userHandler.UpdateProfile)
		user.GET("/registrations", registrationHandler.ListMine)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
