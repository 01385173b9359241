package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/princeprakhar/game-reviews-backend/internal/api/middleware"
	"github.com/princeprakhar/game-reviews-backend/internal/api/routes"
	"github.com/princeprakhar/game-reviews-backend/internal/config"
	"github.com/princeprakhar/game-reviews-backend/internal/database"
	"github.com/princeprakhar/game-reviews-backend/internal/services"
	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/princeprakhar/game-reviews-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg := config.Load()

	logger.Init(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})

	ctx := context.Background()

	// Initialize store
	var (
		st          store.Store
		redisClient *redis.Client
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.Init(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize database: ", err)
		}
		st = store.NewGormStore(db)
	case config.BackendRedis:
		client, err := database.InitRedis(ctx, database.RedisOptions{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Fatal("Failed to initialize redis: ", err)
		}
		redisClient = client
		st = store.NewRedisStore(client)
	default:
		logger.Fatal("Unknown STORE_BACKEND: ", cfg.StoreBackend)
	}
	defer st.Close()

	deps := routes.Dependencies{}

	rateStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize rate limiter: ", err)
	}
	deps.RateLimitStore = rateStore

	if cfg.S3Enabled() {
		s3Service, err := services.NewS3Service(cfg.S3Region, cfg.S3BucketName, cfg.S3AccessKey, cfg.S3SecretKey)
		if err != nil {
			logger.Fatal("Failed to initialize S3: ", err)
		}
		deps.Covers = s3Service
	} else {
		logger.Warn("S3 is not configured, cover uploads are disabled")
	}

	if cfg.EmailEnabled() && len(cfg.AdminEmails) > 0 {
		deps.Notifier = services.NewEmailService(cfg)
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		logger.Warn("Google OAuth is not configured, sign-in is disabled")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, st, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown: ", err)
	}
}
