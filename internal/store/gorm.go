package store

import (
	"context"
	"errors"

	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps games and reviews in two tables. Reviews reference their
// game by slug and (user_id, game_slug) is unique, so the reviewed-games view
// and the duplicate guard are derived by queries instead of being maintained.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &GormStore{db: db}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateGame(ctx context.Context, game *models.Game) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Game{}).Where("slug = ?", game.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrGameExists
		}

		if err := tx.Create(game).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrGameExists
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) GetGame(ctx context.Context, slug string) (*models.Game, error) {
	var game models.Game
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) summaryQuery(ctx context.Context, join string) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("games AS g").
		Select("g.slug AS slug, g.title AS title, g.cover_url AS cover_url, " +
			"COUNT(r.id) AS review_count, COALESCE(AVG(r.nota_final), 0) AS average_score").
		Joins(join + " reviews AS r ON r.game_slug = g.slug").
		Group("g.slug, g.title, g.cover_url")
}

func (s *GormStore) ListGames(ctx context.Context) ([]models.GameSummary, error) {
	summaries := make([]models.GameSummary, 0)
	if err := s.summaryQuery(ctx, "LEFT JOIN").Scan(&summaries).Error; err != nil {
		return nil, err
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (s *GormStore) ListReviewedGames(ctx context.Context) ([]models.GameSummary, error) {
	summaries := make([]models.GameSummary, 0)
	if err := s.summaryQuery(ctx, "JOIN").Scan(&summaries).Error; err != nil {
		return nil, err
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (s *GormStore) UpdateGameTitle(ctx context.Context, slug, title string) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findGame(tx, slug, &game); err != nil {
			return err
		}
		if err := tx.Model(&game).Update("title", title).Error; err != nil {
			return err
		}
		game.Title = title
		return tx.Model(&models.Review{}).
			Where("game_slug = ?", slug).
			UpdateColumn("game_title", title).Error
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) SetGameCover(ctx context.Context, slug, coverURL, coverKey string) (*models.Game, string, error) {
	var (
		game        models.Game
		previousKey string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findGame(tx, slug, &game); err != nil {
			return err
		}
		previousKey = game.CoverKey
		if err := tx.Model(&game).Updates(map[string]interface{}{
			"cover_url": coverURL,
			"cover_key": coverKey,
		}).Error; err != nil {
			return err
		}
		game.CoverURL, game.CoverKey = coverURL, coverKey
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &game, previousKey, nil
}

func findGame(tx *gorm.DB, slug string, game *models.Game) error {
	err := tx.Where("slug = ?", slug).First(game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGameNotFound
	}
	return err
}

func (s *GormStore) DeleteGame(ctx context.Context, slug string) (*models.Game, error) {
	var deleted *models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		err := tx.Where("slug = ?", slug).First(&game).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		found := err == nil

		result := tx.Where("game_slug = ?", slug).Delete(&models.Review{})
		if result.Error != nil {
			return result.Error
		}
		if !found {
			if result.RowsAffected == 0 {
				return ErrGameNotFound
			}
			return nil
		}

		if err := tx.Where("slug = ?", slug).Delete(&models.Game{}).Error; err != nil {
			return err
		}
		deleted = &game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *GormStore) CreateReview(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Game{}).Where("slug = ?", review.GameSlug).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrGameNotFound
		}

		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND game_slug = ?", review.UserID, review.GameSlug).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReview
		}

		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// UpdateReview writes only the columns an author controls; game_title is left
// to UpdateGameTitle.
func (s *GormStore) UpdateReview(ctx context.Context, id string, update models.ReviewUpdate) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&review).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		if err != nil {
			return err
		}

		update.Apply(&review)
		return tx.Model(&models.Review{}).Where("id = ?", id).Updates(map[string]interface{}{
			"user_name":            update.UserName,
			"user_image":           update.UserImage,
			"score_jogabilidade":   update.Scores.Jogabilidade,
			"score_arte":           update.Scores.Arte,
			"score_trilha_sonora":  update.Scores.TrilhaSonora,
			"score_diversao":       update.Scores.Diversao,
			"score_rejogabilidade": update.Scores.Rejogabilidade,
			"score_graficos":       update.Scores.Graficos,
			"score_complexidade":   update.Scores.Complexidade,
			"score_lore":           update.Scores.Lore,
			"horas_jogadas":        update.HorasJogadas,
			"nota_final":           update.NotaFinal,
			"updated_at":           update.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *GormStore) DeleteReview(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *GormStore) ListGameReviews(ctx context.Context, slug string) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := s.db.WithContext(ctx).
		Where("game_slug = ?", slug).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *GormStore) ListUserReviews(ctx context.Context, userID string) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *GormStore) HasReviewed(ctx context.Context, userID, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND game_slug = ?", userID, slug).
		Count(&count).Error
	return count > 0, err
}
