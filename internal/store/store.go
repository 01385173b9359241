// Package store persists games and reviews and keeps the secondary views
// (catalog, reviewed games, per-game and per-user review lists, the
// one-review-per-user-per-game guard) consistent with them.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user already reviewed this game")
	ErrContention      = errors.New("too many concurrent writers, try again")
)

// Store is implemented by the Redis and the relational backends. Every
// mutation is applied completely or not at all.
type Store interface {
	CreateGame(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, slug string) (*models.Game, error)
	ListGames(ctx context.Context) ([]models.GameSummary, error)
	ListReviewedGames(ctx context.Context) ([]models.GameSummary, error)
	// UpdateGameTitle renames the game and copies the title onto every review
	// of it. Other fields of the stored record are kept.
	UpdateGameTitle(ctx context.Context, slug, title string) (*models.Game, error)
	// SetGameCover points the game at a new cover object and returns the
	// updated game along with the key of the cover it replaced.
	SetGameCover(ctx context.Context, slug, coverURL, coverKey string) (*models.Game, string, error)
	// DeleteGame removes the game, all of its reviews and every index entry
	// that references either. It returns the removed game record, which is
	// nil when only dangling index entries were left behind.
	DeleteGame(ctx context.Context, slug string) (*models.Game, error)

	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	// UpdateReview applies update to the stored review and returns the result.
	UpdateReview(ctx context.Context, id string, update models.ReviewUpdate) (*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
	ListGameReviews(ctx context.Context, slug string) ([]models.Review, error)
	ListUserReviews(ctx context.Context, userID string) ([]models.Review, error)
	HasReviewed(ctx context.Context, userID, slug string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

func sortSummaries(summaries []models.GameSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := strings.ToLower(summaries[i].Title), strings.ToLower(summaries[j].Title)
		if a == b {
			return summaries[i].Slug < summaries[j].Slug
		}
		return a < b
	})
	for i := range summaries {
		summaries[i].AverageScore = utils.RoundToTenth(summaries[i].AverageScore)
	}
}

func sortNewestFirst(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt > reviews[j].CreatedAt
	})
}
