package store

import (
	"context"
	"testing"

	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func seedGame(t *testing.T, st Store, slug, title string) {
	t.Helper()
	require.NoError(t, st.CreateGame(context.Background(), &models.Game{Slug: slug, Title: title}))
}

func newReview(id, userID, slug string, createdAt int64) *models.Review {
	return &models.Review{
		ID:        id,
		UserID:    userID,
		UserName:  "user " + userID,
		GameSlug:  slug,
		GameTitle: slug,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Scores: models.Scores{
			Jogabilidade: 8, Arte: 7, TrilhaSonora: 9, Diversao: 6,
			Rejogabilidade: 7, Graficos: 8, Complexidade: 6, Lore: 7,
		},
		HorasJogadas: 12.5,
		NotaFinal:    7.3,
	}
}

func summarySlugs(summaries []models.GameSummary) []string {
	slugs := make([]string, len(summaries))
	for i, s := range summaries {
		slugs[i] = s.Slug
	}
	return slugs
}
