package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/services"
	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
)

// respondError maps store and service errors onto HTTP statuses. Anything
// unrecognised is a 500 whose details stay in the log.
func respondError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, store.ErrGameNotFound),
		errors.Is(err, store.ErrReviewNotFound):
		utils.SendError(c, http.StatusNotFound, message, err)
	case errors.Is(err, store.ErrGameExists),
		errors.Is(err, store.ErrDuplicateReview),
		errors.Is(err, store.ErrContention):
		utils.SendError(c, http.StatusConflict, message, err)
	case errors.Is(err, services.ErrNotOwner):
		utils.SendError(c, http.StatusForbidden, message, err)
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidSession):
		utils.SendError(c, http.StatusUnauthorized, message, err)
	case errors.Is(err, services.ErrInvalidTitle),
		errors.Is(err, services.ErrReservedTitle),
		errors.Is(err, services.ErrMissingGame),
		errors.Is(err, services.ErrInvalidScores),
		errors.Is(err, services.ErrInvalidHours),
		errors.Is(err, services.ErrScoreMismatch),
		errors.Is(err, services.ErrMissingScores),
		errors.Is(err, services.ErrInvalidCover):
		utils.SendError(c, http.StatusBadRequest, message, err)
	case errors.Is(err, services.ErrCoversDisabled),
		errors.Is(err, services.ErrOAuthNotConfigured):
		utils.SendError(c, http.StatusServiceUnavailable, message, err)
	default:
		utils.SendInternalError(c, message, err)
	}
}

func bindError(c *gin.Context, err error) {
	utils.SendValidationError(c, utils.ValidationMessage(err))
}
