package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactorRollsBackEveryRepository(t *testing.T) {
	ctx := t.Context()
	db := openTestDB(t)
	ids := createUsers(t, NewPostgresUserRepository(db), "alice", "bob")
	follows := NewPostgresFollowRepository(db)
	notifications := NewPostgresNotificationRepository(db)
	tx := NewGormTransactor(db)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, follows.AddFollowing(ctx, ids[0], ids[1]))
		require.NoError(t, follows.AddFollower(ctx, ids[1], ids[0]))
		require.NoError(t, notifications.CreateNotification(ctx, &models.Notification{
			RecipientID: ids[1], Type: models.NotificationFollow, ActorID: ids[0],
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ok, err := follows.IsFollowing(ctx, ids[0], ids[1])
	require.NoError(t, err)
	assert.False(t, ok)
	followers, err := follows.GetFollowerIDs(ctx, ids[1])
	require.NoError(t, err)
	assert.Empty(t, followers)
	count, err := notifications.GetUnreadCount(ctx, ids[1])
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormTransactorCommits(t *testing.T) {
	ctx := t.Context()
	db := openTestDB(t)
	ids := createUsers(t, NewPostgresUserRepository(db), "alice", "bob")
	follows := NewPostgresFollowRepository(db)
	tx := NewGormTransactor(db)

	require.NoError(t, tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := follows.AddFollowing(ctx, ids[0], ids[1]); err != nil {
			return err
		}
		return follows.AddFollower(ctx, ids[1], ids[0])
	}))

	ok, err := follows.IsFollowing(ctx, ids[0], ids[1])
	require.NoError(t, err)
	assert.True(t, ok)
}
