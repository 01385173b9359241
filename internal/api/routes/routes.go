package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/api/handlers"
	"github.com/princeprakhar/game-reviews-backend/internal/api/middleware"
	"github.com/princeprakhar/game-reviews-backend/internal/config"
	"github.com/princeprakhar/game-reviews-backend/internal/monitoring"
	"github.com/princeprakhar/game-reviews-backend/internal/services"
	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/princeprakhar/game-reviews-backend/pkg/logger"
	"github.com/ulule/limiter/v3"
	"golang.org/x/oauth2"
)

// Dependencies carries the collaborators that main builds from configuration
// and tests replace with fakes. Zero values are filled from cfg.
type Dependencies struct {
	Covers         services.CoverStorage
	Notifier       services.ReviewNotifier
	RateLimitStore limiter.Store
	Metrics        *monitoring.Metrics

	OAuthEndpoint oauth2.Endpoint
	UserInfoURL   string
}

func SetupRoutes(router *gin.Engine, st store.Store, cfg *config.Config, deps Dependencies) {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	rateStore := deps.RateLimitStore
	if rateStore == nil {
		var err error
		if rateStore, err = middleware.NewRateLimitStore(nil); err != nil {
			logger.WithError(err).Warn("rate limiting disabled")
		}
	}

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(metrics.Middleware())
	router.Use(middleware.RateLimitMiddleware(rateStore, cfg.RateLimitRPS))

	// Initialize services
	authService := services.NewAuthService(services.AuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		AdminEmails:  cfg.AdminEmails,
		Endpoint:     deps.OAuthEndpoint,
		UserInfoURL:  deps.UserInfoURL,
	})
	gameService := services.NewGameService(st, deps.Covers)
	reviewService := services.NewReviewService(st, deps.Notifier)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, metrics, cfg.BaseURL, cfg.Environment == "production")
	gameHandler := handlers.NewGameHandler(gameService, metrics)
	reviewHandler := handlers.NewReviewHandler(reviewService, metrics)

	requireAuth := middleware.AuthMiddleware(authService)
	requireAdmin := middleware.AdminOnly()

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			logger.WithError(err).Error("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Store is unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
	})
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.GET("/login", authHandler.Login)
		auth.GET("/callback", authHandler.Callback)
		auth.GET("/session", requireAuth, authHandler.Session)
		auth.POST("/logout", authHandler.Logout)
	}

	games := api.Group("/games")
	{
		games.GET("", gameHandler.ListGames)
		games.GET("/reviewed", gameHandler.ListReviewedGames)
		games.GET("/:slug", gameHandler.GetGame)
		games.GET("/:slug/reviewed", requireAuth, reviewHandler.HasReviewed)
		games.POST("", requireAuth, requireAdmin, gameHandler.CreateGame)
		games.PUT("/:slug", requireAuth, requireAdmin, gameHandler.UpdateGame)
		games.DELETE("/:slug", requireAuth, requireAdmin, gameHandler.DeleteGame)
		games.POST("/:slug/cover", requireAuth, requireAdmin, gameHandler.UploadCover)
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("", requireAuth, reviewHandler.CreateReview)
		reviews.GET("/:reviewId", reviewHandler.GetReview)
		reviews.PUT("/:reviewId", requireAuth, reviewHandler.UpdateReview)
		reviews.DELETE("/:reviewId", requireAuth, reviewHandler.DeleteReview)
	}

	api.GET("/users/:userId/reviews", reviewHandler.GetUserReviews)

	logger.Info("Routes initialized successfully")
}
