package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/api/middleware"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/monitoring"
	"github.com/princeprakhar/game-reviews-backend/internal/services"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	metrics       *monitoring.Metrics
}

func NewReviewHandler(reviewService *services.ReviewService, metrics *monitoring.Metrics) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, metrics: metrics}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, "Failed to create review", err)
		return
	}

	h.metrics.RecordEvent(monitoring.EventReviewCreated)
	utils.SendCreated(c, "Review created successfully", review)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReview(c.Request.Context(), c.Param("reviewId"))
	if err != nil {
		respondError(c, "Failed to fetch review", err)
		return
	}
	utils.SendSuccess(c, "Review retrieved successfully", review)
}

// UpdateReview checks ownership before looking at the body, so a stranger is
// refused regardless of what they send.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := c.Param("reviewId")

	if _, err := h.reviewService.GetOwnedReview(c.Request.Context(), user, id); err != nil {
		respondError(c, "Failed to update review", err)
		return
	}

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), user, id, req)
	if err != nil {
		respondError(c, "Failed to update review", err)
		return
	}

	h.metrics.RecordEvent(monitoring.EventReviewUpdated)
	utils.SendSuccess(c, "Review updated successfully", review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.reviewService.DeleteReview(c.Request.Context(), user, c.Param("reviewId")); err != nil {
		respondError(c, "Failed to delete review", err)
		return
	}

	h.metrics.RecordEvent(monitoring.EventReviewDeleted)
	utils.SendSuccess(c, "Review deleted successfully", nil)
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListUserReviews(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, "Failed to fetch reviews", err)
		return
	}
	utils.SendSuccess(c, "Reviews retrieved successfully", reviews)
}

// HasReviewed answers whether the signed-in user already reviewed a game.
func (h *ReviewHandler) HasReviewed(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	reviewed, err := h.reviewService.HasReviewed(c.Request.Context(), user.ID, c.Param("slug"))
	if err != nil {
		respondError(c, "Failed to check review status", err)
		return
	}
	utils.SendSuccess(c, "Review status retrieved", gin.H{"reviewed": reviewed})
}
