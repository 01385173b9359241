package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const defaultTxRetries = 8

// RedisStore keeps games and reviews in the flat key namespace described in
// keys.go. Multi-key mutations use WATCH/MULTI/EXEC so that the check they
// depend on and the writes they perform commit together.
type RedisStore struct {
	client     *redis.Client
	maxRetries int
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		client:     client,
		maxRetries: defaultTxRetries,
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// gameRecord is the stored form of a game; it keeps the cover object key that
// the API representation hides.
type gameRecord struct {
	models.Game
	CoverKey string `json:"coverKey,omitempty"`
}

func encodeGame(game *models.Game) ([]byte, error) {
	return json.Marshal(gameRecord{Game: *game, CoverKey: game.CoverKey})
}

func decodeGame(data string) (*models.Game, error) {
	var rec gameRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	game := rec.Game
	game.CoverKey = rec.CoverKey
	return &game, nil
}

func decodeReview(data string) (*models.Review, error) {
	var review models.Review
	if err := json.Unmarshal([]byte(data), &review); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	return &review, nil
}

// watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changed before EXEC.
func (s *RedisStore) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContention
}

// reader is the read surface shared by *redis.Client and *redis.Tx.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func getGame(ctx context.Context, c reader, slug string) (*models.Game, error) {
	data, err := c.Get(ctx, gameKey(slug)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeGame(data)
}

func getReview(ctx context.Context, c reader, id string) (*models.Review, error) {
	data, err := c.Get(ctx, reviewKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeReview(data)
}

// getReviews loads the records for ids in order, skipping ids whose record
// no longer exists.
func getReviews(ctx context.Context, c reader, ids []string) ([]models.Review, error) {
	reviews := make([]models.Review, 0, len(ids))
	if len(ids) == 0 {
		return reviews, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = reviewKey(id)
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		review, err := decodeReview(data)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, nil
}

func (s *RedisStore) CreateGame(ctx context.Context, game *models.Game) error {
	key := gameKey(game.Slug)
	data, err := encodeGame(game)
	if err != nil {
		return err
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrGameExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, allGamesKey, game.Slug)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) GetGame(ctx context.Context, slug string) (*models.Game, error) {
	return getGame(ctx, s.client, slug)
}

func (s *RedisStore) ListGames(ctx context.Context) ([]models.GameSummary, error) {
	slugs, err := s.client.SMembers(ctx, allGamesKey).Result()
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, slugs)
}

func (s *RedisStore) ListReviewedGames(ctx context.Context) ([]models.GameSummary, error) {
	slugs, err := s.client.SMembers(ctx, reviewedGamesKey).Result()
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, slugs)
}

func (s *RedisStore) summaries(ctx context.Context, slugs []string) ([]models.GameSummary, error) {
	summaries := make([]models.GameSummary, 0, len(slugs))
	if len(slugs) == 0 {
		return summaries, nil
	}

	gameKeys := make([]string, len(slugs))
	for i, slug := range slugs {
		gameKeys[i] = gameKey(slug)
	}

	values, err := s.client.MGet(ctx, gameKeys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		game, err := decodeGame(data)
		if err != nil {
			return nil, err
		}

		ids, err := s.client.LRange(ctx, reviewsForGameKey(game.Slug), 0, -1).Result()
		if err != nil {
			return nil, err
		}
		reviews, err := getReviews(ctx, s.client, ids)
		if err != nil {
			return nil, err
		}

		summary := models.GameSummary{
			Slug:        game.Slug,
			Title:       game.Title,
			CoverURL:    game.CoverURL,
			ReviewCount: int64(len(reviews)),
		}
		if len(reviews) > 0 {
			var total float64
			for _, r := range reviews {
				total += r.NotaFinal
			}
			summary.AverageScore = total / float64(len(reviews))
		}
		summaries = append(summaries, summary)
	}

	sortSummaries(summaries)
	return summaries, nil
}

func (s *RedisStore) UpdateGameTitle(ctx context.Context, slug, title string) (*models.Game, error) {
	key := gameKey(slug)
	listKey := reviewsForGameKey(slug)
	var updated *models.Game

	err := s.watch(ctx, func(tx *redis.Tx) error {
		game, err := getGame(ctx, tx, slug)
		if err != nil {
			return err
		}
		game.Title = title
		data, err := encodeGame(game)
		if err != nil {
			return err
		}

		ids, err := tx.LRange(ctx, listKey, 0, -1).Result()
		if err != nil {
			return err
		}
		if err := watchReviews(ctx, tx, ids); err != nil {
			return err
		}
		reviews, err := getReviews(ctx, tx, ids)
		if err != nil {
			return err
		}

		renamed := make(map[string][]byte, len(reviews))
		for _, review := range reviews {
			review.GameTitle = title
			encoded, err := json.Marshal(review)
			if err != nil {
				return err
			}
			renamed[review.ID] = encoded
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			for id, encoded := range renamed {
				pipe.Set(ctx, reviewKey(id), encoded, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = game
		return nil
	}, key, listKey)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) SetGameCover(ctx context.Context, slug, coverURL, coverKey string) (*models.Game, string, error) {
	key := gameKey(slug)
	var (
		updated     *models.Game
		previousKey string
	)

	err := s.watch(ctx, func(tx *redis.Tx) error {
		game, err := getGame(ctx, tx, slug)
		if err != nil {
			return err
		}
		previous := game.CoverKey
		game.CoverURL = coverURL
		game.CoverKey = coverKey
		data, err := encodeGame(game)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated, previousKey = game, previous
		return nil
	}, key)
	if err != nil {
		return nil, "", err
	}
	return updated, previousKey, nil
}

func (s *RedisStore) DeleteGame(ctx context.Context, slug string) (*models.Game, error) {
	key := gameKey(slug)
	listKey := reviewsForGameKey(slug)
	var deleted *models.Game

	err := s.watch(ctx, func(tx *redis.Tx) error {
		deleted = nil
		game, err := getGame(ctx, tx, slug)
		if err != nil && !errors.Is(err, ErrGameNotFound) {
			return err
		}

		ids, err := tx.LRange(ctx, listKey, 0, -1).Result()
		if err != nil {
			return err
		}
		inCatalog, err := tx.SIsMember(ctx, allGamesKey, slug).Result()
		if err != nil {
			return err
		}
		inReviewed, err := tx.SIsMember(ctx, reviewedGamesKey, slug).Result()
		if err != nil {
			return err
		}
		if game == nil && len(ids) == 0 && !inCatalog && !inReviewed {
			return ErrGameNotFound
		}

		if err := watchReviews(ctx, tx, ids); err != nil {
			return err
		}
		reviews, err := getReviews(ctx, tx, ids)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, review := range reviews {
				pipe.Del(ctx, userGameKey(review.UserID, slug))
				pipe.SRem(ctx, userReviewsKey(review.UserID), review.ID)
			}
			for _, id := range ids {
				pipe.Del(ctx, reviewKey(id))
			}
			pipe.Del(ctx, listKey)
			pipe.SRem(ctx, reviewedGamesKey, slug)
			pipe.Del(ctx, key)
			pipe.SRem(ctx, allGamesKey, slug)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = game
		return nil
	}, key, listKey)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func watchReviews(ctx context.Context, tx *redis.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = reviewKey(id)
	}
	return tx.Watch(ctx, keys...).Err()
}

func (s *RedisStore) CreateReview(ctx context.Context, review *models.Review) error {
	guardKey := userGameKey(review.UserID, review.GameSlug)
	gKey := gameKey(review.GameSlug)
	data, err := json.Marshal(review)
	if err != nil {
		return err
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, gKey).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrGameNotFound
		}

		n, err = tx.Exists(ctx, guardKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateReview
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, reviewKey(review.ID), data, 0)
			pipe.LPush(ctx, reviewsForGameKey(review.GameSlug), review.ID)
			pipe.SAdd(ctx, reviewedGamesKey, review.GameSlug)
			pipe.SAdd(ctx, userReviewsKey(review.UserID), review.ID)
			pipe.Set(ctx, guardKey, review.ID, 0)
			return nil
		})
		return err
	}, guardKey, gKey)
}

func (s *RedisStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	return getReview(ctx, s.client, id)
}

func (s *RedisStore) UpdateReview(ctx context.Context, id string, update models.ReviewUpdate) (*models.Review, error) {
	key := reviewKey(id)
	var updated *models.Review

	err := s.watch(ctx, func(tx *redis.Tx) error {
		review, err := getReview(ctx, tx, id)
		if err != nil {
			return err
		}
		update.Apply(review)
		data, err := json.Marshal(review)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = review
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) DeleteReview(ctx context.Context, id string) error {
	existing, err := getReview(ctx, s.client, id)
	if err != nil {
		return err
	}

	key := reviewKey(id)
	listKey := reviewsForGameKey(existing.GameSlug)

	return s.watch(ctx, func(tx *redis.Tx) error {
		review, err := getReview(ctx, tx, id)
		if err != nil {
			return err
		}

		ids, err := tx.LRange(ctx, listKey, 0, -1).Result()
		if err != nil {
			return err
		}
		remaining := 0
		for _, other := range ids {
			if other != id {
				remaining++
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.LRem(ctx, listKey, 0, id)
			pipe.SRem(ctx, userReviewsKey(review.UserID), id)
			pipe.Del(ctx, userGameKey(review.UserID, review.GameSlug))
			if remaining == 0 {
				pipe.SRem(ctx, reviewedGamesKey, review.GameSlug)
			}
			return nil
		})
		return err
	}, key, listKey)
}

func (s *RedisStore) ListGameReviews(ctx context.Context, slug string) ([]models.Review, error) {
	ids, err := s.client.LRange(ctx, reviewsForGameKey(slug), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return getReviews(ctx, s.client, ids)
}

func (s *RedisStore) ListUserReviews(ctx context.Context, userID string) ([]models.Review, error) {
	ids, err := s.client.SMembers(ctx, userReviewsKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	reviews, err := getReviews(ctx, s.client, ids)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(reviews)
	return reviews, nil
}

func (s *RedisStore) HasReviewed(ctx context.Context, userID, slug string) (bool, error) {
	n, err := s.client.Exists(ctx, userGameKey(userID, slug)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
