package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	st := store.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

type fakeCovers struct {
	// onUpload runs while the upload is in flight.
	onUpload func()

	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
	n         int
}

func (f *fakeCovers) UploadCover(ctx context.Context, slug string, body io.Reader, fileName, contentType string, size int64) (*UploadResult, error) {
	if f.onUpload != nil {
		f.onUpload()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	f.n++
	key := fmt.Sprintf("games/covers/%s/%d.png", slug, f.n)
	f.uploaded = append(f.uploaded, key)
	return &UploadResult{
		Key:         key,
		URL:         "https://cdn.example.com/" + key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (f *fakeCovers) DeleteCover(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

type recordingNotifier struct {
	ch  chan *models.Review
	err error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan *models.Review, 4)}
}

func (n *recordingNotifier) NotifyReviewCreated(review *models.Review) error {
	n.ch <- review
	return n.err
}

func pngBody() *bytes.Reader {
	return bytes.NewReader([]byte("\x89PNG\r\n\x1a\nfake"))
}

func mustCreateGame(t *testing.T, svc *GameService, title string) *models.Game {
	t.Helper()
	game, err := svc.CreateGame(context.Background(), title)
	require.NoError(t, err)
	return game
}

var errBoom = errors.New("boom")

func scoresInput(s models.Scores) *models.ScoresInput {
	return &models.ScoresInput{
		Jogabilidade:   &s.Jogabilidade,
		Arte:           &s.Arte,
		TrilhaSonora:   &s.TrilhaSonora,
		Diversao:       &s.Diversao,
		Rejogabilidade: &s.Rejogabilidade,
		Graficos:       &s.Graficos,
		Complexidade:   &s.Complexidade,
		Lore:           &s.Lore,
	}
}

func validRequest(slug string) models.ReviewRequest {
	return models.ReviewRequest{
		GameSlug: slug,
		Scores: scoresInput(models.Scores{
			Jogabilidade: 8, Arte: 7, TrilhaSonora: 9, Diversao: 6,
			Rejogabilidade: 7, Graficos: 8, Complexidade: 6, Lore: 7,
		}),
		HorasJogadas: 40,
	}
}

var (
	alice = &models.User{ID: "google-alice", Name: "Alice", Email: "alice@example.com"}
	bob   = &models.User{ID: "google-bob", Name: "Bob", Email: "bob@example.com"}
)
