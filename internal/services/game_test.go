package services

import (
	"context"
	"testing"

	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGame(t *testing.T) {
	games := NewGameService(newTestStore(t), nil)
	ctx := context.Background()

	game, err := games.CreateGame(ctx, "  The Legend of Zelda!! ")
	require.NoError(t, err)
	assert.Equal(t, "the-legend-of-zelda", game.Slug)
	assert.Equal(t, "The Legend of Zelda!!", game.Title)
	assert.NotZero(t, game.CreatedAt)

	_, err = games.CreateGame(ctx, "the legend of zelda")
	assert.ErrorIs(t, err, store.ErrGameExists)

	_, err = games.CreateGame(ctx, "!!!")
	assert.ErrorIs(t, err, ErrInvalidTitle)

	_, err = games.CreateGame(ctx, "Reviewed")
	assert.ErrorIs(t, err, ErrReservedTitle)
}

func TestGetGameIncludesReviews(t *testing.T) {
	st := newTestStore(t)
	games := NewGameService(st, nil)
	reviews := NewReviewService(st, nil)
	ctx := context.Background()
	mustCreateGame(t, games, "Celeste")

	_, err := reviews.CreateReview(ctx, alice, validRequest("celeste"))
	require.NoError(t, err)

	details, err := games.GetGame(ctx, "celeste")
	require.NoError(t, err)
	assert.Equal(t, "Celeste", details.Game.Title)
	assert.Len(t, details.Reviews, 1)

	_, err = games.GetGame(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrGameNotFound)
}

func TestUpdateTitleKeepsSlug(t *testing.T) {
	st := newTestStore(t)
	games := NewGameService(st, nil)
	reviews := NewReviewService(st, nil)
	ctx := context.Background()
	mustCreateGame(t, games, "Celeste")
	review, err := reviews.CreateReview(ctx, alice, validRequest("celeste"))
	require.NoError(t, err)

	game, err := games.UpdateTitle(ctx, "celeste", "Celeste: Farewell")
	require.NoError(t, err)
	assert.Equal(t, "celeste", game.Slug)
	assert.Equal(t, "Celeste: Farewell", game.Title)

	stored, err := reviews.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "Celeste: Farewell", stored.GameTitle)

	_, err = games.UpdateTitle(ctx, "celeste", "   ")
	assert.ErrorIs(t, err, ErrInvalidTitle)
	_, err = games.UpdateTitle(ctx, "ghost", "Ghost")
	assert.ErrorIs(t, err, store.ErrGameNotFound)
}

func TestDeleteGameCascades(t *testing.T) {
	st := newTestStore(t)
	covers := &fakeCovers{}
	games := NewGameService(st, covers)
	reviews := NewReviewService(st, nil)
	ctx := context.Background()
	mustCreateGame(t, games, "Celeste")

	game, err := games.UploadCover(ctx, "celeste", pngBody(), "cover.png", "image/png", 12)
	require.NoError(t, err)
	_, err = reviews.CreateReview(ctx, alice, validRequest("celeste"))
	require.NoError(t, err)

	require.NoError(t, games.DeleteGame(ctx, "celeste"))
	assert.Equal(t, []string{game.CoverKey}, covers.deleted)

	list, err := reviews.ListUserReviews(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	reviewed, err := games.ListReviewedGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviewed)

	assert.ErrorIs(t, games.DeleteGame(ctx, "celeste"), store.ErrGameNotFound)
}

func TestDeleteGameIgnoresCoverFailure(t *testing.T) {
	st := newTestStore(t)
	covers := &fakeCovers{deleteErr: errBoom}
	games := NewGameService(st, covers)
	ctx := context.Background()
	mustCreateGame(t, games, "Celeste")

	_, err := games.UploadCover(ctx, "celeste", pngBody(), "cover.png", "image/png", 12)
	require.NoError(t, err)

	assert.NoError(t, games.DeleteGame(ctx, "celeste"))
}

func TestUploadCover(t *testing.T) {
	st := newTestStore(t)
	covers := &fakeCovers{}
	games := NewGameService(st, covers)
	ctx := context.Background()
	mustCreateGame(t, games, "Celeste")

	first, err := games.UploadCover(ctx, "celeste", pngBody(), "cover.png", "image/png", 12)
	require.NoError(t, err)
	assert.Contains(t, first.CoverURL, first.CoverKey)

	second, err := games.UploadCover(ctx, "celeste", pngBody(), "cover.webp", "", 12)
	require.NoError(t, err)
	assert.NotEqual(t, first.CoverKey, second.CoverKey)
	assert.Equal(t, []string{first.CoverKey}, covers.deleted, "previous cover is removed")

	stored, err := st.GetGame(ctx, "celeste")
	require.NoError(t, err)
	assert.Equal(t, second.CoverKey, stored.CoverKey)

	_, err = games.UploadCover(ctx, "celeste", pngBody(), "notes.txt", "text/plain", 12)
	assert.ErrorIs(t, err, ErrInvalidCover)
	_, err = games.UploadCover(ctx, "celeste", pngBody(), "huge.png", "image/png", maxCoverSize+1)
	assert.ErrorIs(t, err, ErrInvalidCover)
	_, err = games.UploadCover(ctx, "ghost", pngBody(), "cover.png", "image/png", 12)
	assert.ErrorIs(t, err, store.ErrGameNotFound)

	disabled := NewGameService(st, nil)
	_, err = disabled.UploadCover(ctx, "celeste", pngBody(), "cover.png", "image/png", 12)
	assert.ErrorIs(t, err, ErrCoversDisabled)
}

func TestUploadCoverKeepsConcurrentRename(t *testing.T) {
	st := newTestStore(t)
	covers := &fakeCovers{}
	games := NewGameService(st, covers)
	reviews := NewReviewService(st, nil)
	ctx := context.Background()
	mustCreateGame(t, games, "Old Title")
	review, err := reviews.CreateReview(ctx, alice, validRequest("old-title"))
	require.NoError(t, err)

	covers.onUpload = func() {
		_, err := games.UpdateTitle(ctx, "old-title", "New Title")
		require.NoError(t, err)
	}

	game, err := games.UploadCover(ctx, "old-title", pngBody(), "cover.png", "image/png", 12)
	require.NoError(t, err)
	assert.Equal(t, "New Title", game.Title)
	assert.NotEmpty(t, game.CoverKey)

	stored, err := st.GetGame(ctx, "old-title")
	require.NoError(t, err)
	assert.Equal(t, "New Title", stored.Title)
	assert.Equal(t, game.CoverKey, stored.CoverKey)

	storedReview, err := reviews.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", storedReview.GameTitle)
}
