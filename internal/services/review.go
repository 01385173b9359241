package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
	"github.com/princeprakhar/game-reviews-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

// scoreTolerance is how far a submitted notaFinal may be from the recomputed
// one; the client rounds to one decimal as well.
const scoreTolerance = 0.05 + 1e-9

var (
	ErrNotOwner        = errors.New("only the author can change this review")
	ErrMissingGame     = errors.New("gameSlug or gameTitle is required")
	ErrInvalidScores   = errors.New("scores must be between 0 and 10")
	ErrInvalidHours    = errors.New("horasJogadas must be a non-negative number")
	ErrScoreMismatch   = errors.New("notaFinal does not match the average of the scores")
	ErrMissingScores   = errors.New("scores are required")
	ErrUnauthenticated = errors.New("authentication required")
)

// ReviewNotifier is told about every new review.
type ReviewNotifier interface {
	NotifyReviewCreated(review *models.Review) error
}

type ReviewService struct {
	store    store.Store
	notifier ReviewNotifier
	now      func() time.Time
}

func NewReviewService(st store.Store, notifier ReviewNotifier) *ReviewService {
	if st == nil {
		panic("store cannot be nil")
	}
	return &ReviewService{
		store:    st,
		notifier: notifier,
		now:      time.Now,
	}
}

// FinalScore validates the request's scores and returns them with their mean
// rounded to one decimal. A client-supplied notaFinal is only accepted when it
// agrees.
func FinalScore(req models.ReviewRequest) (models.Scores, float64, error) {
	scores, ok := req.Scores.Scores()
	if !ok {
		return models.Scores{}, 0, ErrMissingScores
	}
	for _, v := range scores.Values() {
		if v < 0 || v > 10 {
			return models.Scores{}, 0, ErrInvalidScores
		}
	}
	if req.HorasJogadas < 0 || math.IsNaN(req.HorasJogadas) || math.IsInf(req.HorasJogadas, 0) {
		return models.Scores{}, 0, ErrInvalidHours
	}

	avg := utils.AverageScore(scores.Values())
	if req.NotaFinal != nil && math.Abs(*req.NotaFinal-avg) > scoreTolerance {
		return models.Scores{}, 0, ErrScoreMismatch
	}
	return scores, avg, nil
}

func (s *ReviewService) CreateReview(ctx context.Context, user *models.User, req models.ReviewRequest) (*models.Review, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthenticated
	}

	slug := utils.SanitizeString(req.GameSlug)
	if slug == "" {
		slug = utils.Slugify(req.GameTitle)
	}
	if slug == "" {
		return nil, ErrMissingGame
	}

	scores, notaFinal, err := FinalScore(req)
	if err != nil {
		return nil, err
	}

	game, err := s.store.GetGame(ctx, slug)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	review := &models.Review{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		UserName:     user.Name,
		UserImage:    user.Image,
		GameTitle:    game.Title,
		GameSlug:     game.Slug,
		CreatedAt:    now,
		UpdatedAt:    now,
		Scores:       scores,
		HorasJogadas: req.HorasJogadas,
		NotaFinal:    notaFinal,
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"user_id":   review.UserID,
		"slug":      review.GameSlug,
	}).Info("review created")

	if s.notifier != nil {
		created := *review
		go func() {
			if err := s.notifier.NotifyReviewCreated(&created); err != nil {
				logger.WithFields(logrus.Fields{"review_id": created.ID}).
					WithError(err).Warn("review notification failed")
			}
		}()
	}

	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*models.Review, error) {
	return s.store.GetReview(ctx, id)
}

// GetOwnedReview loads a review and checks that user wrote it.
func (s *ReviewService) GetOwnedReview(ctx context.Context, user *models.User, id string) (*models.Review, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthenticated
	}
	review, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != user.ID {
		return nil, ErrNotOwner
	}
	return review, nil
}

// UpdateReview replaces the scored fields of a review owned by user. The
// store applies them to the record it currently holds, so a rename of the game
// that lands in between is kept.
func (s *ReviewService) UpdateReview(ctx context.Context, user *models.User, id string, req models.ReviewRequest) (*models.Review, error) {
	if _, err := s.GetOwnedReview(ctx, user, id); err != nil {
		return nil, err
	}

	scores, notaFinal, err := FinalScore(req)
	if err != nil {
		return nil, err
	}

	return s.store.UpdateReview(ctx, id, models.ReviewUpdate{
		UserName:     user.Name,
		UserImage:    user.Image,
		Scores:       scores,
		HorasJogadas: req.HorasJogadas,
		NotaFinal:    notaFinal,
		UpdatedAt:    s.now().UnixMilli(),
	})
}

func (s *ReviewService) DeleteReview(ctx context.Context, user *models.User, id string) error {
	if _, err := s.GetOwnedReview(ctx, user, id); err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"review_id": id, "user_id": user.ID}).Info("review deleted")
	return nil
}

func (s *ReviewService) ListUserReviews(ctx context.Context, userID string) ([]models.Review, error) {
	return s.store.ListUserReviews(ctx, userID)
}

func (s *ReviewService) HasReviewed(ctx context.Context, userID, slug string) (bool, error) {
	return s.store.HasReviewed(ctx, userID, slug)
}
