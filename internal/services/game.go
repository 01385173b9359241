package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
	"github.com/princeprakhar/game-reviews-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidTitle   = errors.New("title must contain at least one letter or digit")
	ErrReservedTitle  = errors.New("title maps to a reserved path")
	ErrCoversDisabled = errors.New("cover uploads are not configured")
)

// reservedSlugs collide with fixed routes under /api/games.
var reservedSlugs = map[string]bool{
	"reviewed": true,
}

// CoverStorage stores game cover images.
type CoverStorage interface {
	UploadCover(ctx context.Context, slug string, body io.Reader, fileName, contentType string, size int64) (*UploadResult, error)
	DeleteCover(ctx context.Context, key string) error
}

type GameService struct {
	store  store.Store
	covers CoverStorage
}

func NewGameService(st store.Store, covers CoverStorage) *GameService {
	if st == nil {
		panic("store cannot be nil")
	}
	return &GameService{store: st, covers: covers}
}

func (s *GameService) CreateGame(ctx context.Context, title string) (*models.Game, error) {
	title = utils.SanitizeString(title)
	slug := utils.Slugify(title)
	if slug == "" {
		return nil, ErrInvalidTitle
	}
	if reservedSlugs[slug] {
		return nil, ErrReservedTitle
	}

	game := &models.Game{
		Slug:      slug,
		Title:     title,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"slug": slug}).Info("game created")
	return game, nil
}

// GetGame returns the game with its reviews, newest first.
func (s *GameService) GetGame(ctx context.Context, slug string) (*models.GameDetails, error) {
	game, err := s.store.GetGame(ctx, slug)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.ListGameReviews(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &models.GameDetails{Game: *game, Reviews: reviews}, nil
}

func (s *GameService) ListGames(ctx context.Context) ([]models.GameSummary, error) {
	return s.store.ListGames(ctx)
}

func (s *GameService) ListReviewedGames(ctx context.Context) ([]models.GameSummary, error) {
	return s.store.ListReviewedGames(ctx)
}

// UpdateTitle renames a game. The slug is kept, and every review of the game
// picks up the new title.
func (s *GameService) UpdateTitle(ctx context.Context, slug, title string) (*models.Game, error) {
	title = utils.SanitizeString(title)
	if utils.Slugify(title) == "" {
		return nil, ErrInvalidTitle
	}

	return s.store.UpdateGameTitle(ctx, slug, title)
}

// DeleteGame removes the game and everything that depends on it. The cover
// object is removed afterwards; a failure there is only logged.
func (s *GameService) DeleteGame(ctx context.Context, slug string) error {
	deleted, err := s.store.DeleteGame(ctx, slug)
	if err != nil {
		return err
	}

	if deleted != nil && deleted.CoverKey != "" && s.covers != nil {
		if err := s.covers.DeleteCover(ctx, deleted.CoverKey); err != nil {
			logger.WithFields(logrus.Fields{"slug": slug, "key": deleted.CoverKey}).
				WithError(err).Warn("failed to delete cover object")
		}
	}

	logger.WithFields(logrus.Fields{"slug": slug}).Info("game deleted")
	return nil
}

func (s *GameService) UploadCover(ctx context.Context, slug string, body io.Reader, fileName, contentType string, size int64) (*models.Game, error) {
	if s.covers == nil {
		return nil, ErrCoversDisabled
	}
	contentType, err := ValidateCover(fileName, contentType, size)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetGame(ctx, slug); err != nil {
		return nil, err
	}

	result, err := s.covers.UploadCover(ctx, slug, body, fileName, contentType, size)
	if err != nil {
		return nil, err
	}

	// only the cover fields are written; a rename during the upload stays
	game, previousKey, err := s.store.SetGameCover(ctx, slug, result.URL, result.Key)
	if err != nil {
		if delErr := s.covers.DeleteCover(ctx, result.Key); delErr != nil {
			logger.WithError(delErr).Warn("failed to clean up uploaded cover")
		}
		return nil, err
	}

	if previousKey != "" && previousKey != result.Key {
		if err := s.covers.DeleteCover(ctx, previousKey); err != nil {
			logger.WithFields(logrus.Fields{"slug": slug, "key": previousKey}).
				WithError(err).Warn("failed to delete previous cover")
		}
	}
	return game, nil
}
