package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	ctx           context.Context
	store         *memstore.Store
	graph         *GraphService
	interactions  *InteractionService
	content       *ContentService
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithLogger(t, zap.NewNop())
}

func newFixtureWithLogger(t *testing.T, logger *zap.Logger) *fixture {
	t.Helper()
	store := memstore.New()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	store.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return &fixture{
		ctx:           context.Background(),
		store:         store,
		graph:         NewGraphService(store, store, store, store, store, logger),
		interactions:  NewInteractionService(store, store, store, logger),
		content:       NewContentService(store, store),
		notifications: NewNotificationService(store, store, store),
	}
}

func (f *fixture) user(t *testing.T, username string) uint {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, f.store.CreateUser(f.ctx, u))
	return u.ID
}

func (f *fixture) post(t *testing.T, ownerID uint, caption string) string {
	t.Helper()
	p, err := f.content.CreatePost(f.ctx, ownerID, models.CreatePostRequest{
		ImageURL: "https://img.example.com/" + caption + ".jpg",
		Caption:  caption,
	})
	require.NoError(t, err)
	return p.ID.Hex()
}

func (f *fixture) likes(t *testing.T, postID string) []uint {
	t.Helper()
	p, err := f.store.GetPostByID(f.ctx, postID)
	require.NoError(t, err)
	return p.Likes
}

func captions(posts []models.EnrichedPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Caption
	}
	return out
}
