package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLikeUnlikeRoundTripKeepsNotification(t *testing.T) {
	f := newFixture(t)
	owner, fan, other := f.user(t, "owner"), f.user(t, "fan"), f.user(t, "other")
	postID := f.post(t, owner, "sunset")
	require.NoError(t, f.interactions.Like(f.ctx, other, postID))
	before := f.likes(t, postID)

	require.NoError(t, f.interactions.Like(f.ctx, fan, postID))
	assert.Equal(t, append(append([]uint{}, before...), fan), f.likes(t, postID))

	require.NoError(t, f.interactions.Unlike(f.ctx, fan, postID))
	assert.Equal(t, before, f.likes(t, postID))

	var fromFan []models.Notification
	for _, n := range f.store.Notifications() {
		if n.ActorID == fan {
			fromFan = append(fromFan, n)
		}
	}
	require.Len(t, fromFan, 1)
	assert.Equal(t, models.NotificationLike, fromFan[0].Type)
	assert.Equal(t, owner, fromFan[0].RecipientID)
	require.NotNil(t, fromFan[0].PostID)
	assert.Equal(t, postID, *fromFan[0].PostID)
}

func TestLikeTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	postID := f.post(t, owner, "sunset")

	require.NoError(t, f.interactions.Like(f.ctx, fan, postID))
	err := f.interactions.Like(f.ctx, fan, postID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, []uint{fan}, f.likes(t, postID))
	assert.Len(t, f.store.Notifications(), 1)
}

func TestLikeOwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	postID := f.post(t, owner, "selfie")

	require.NoError(t, f.interactions.Like(f.ctx, owner, postID))
	assert.Equal(t, []uint{owner}, f.likes(t, postID))
	assert.Empty(t, f.store.Notifications())
}

func TestLikeMissingOrMalformedPost(t *testing.T) {
	f := newFixture(t)
	fan := f.user(t, "fan")

	err := f.interactions.Like(f.ctx, fan, primitive.NewObjectID().Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	err = f.interactions.Like(f.ctx, fan, "not-an-id")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUnlikeWithoutLikeConflicts(t *testing.T) {
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	postID := f.post(t, owner, "sunset")

	err := f.interactions.Unlike(f.ctx, fan, postID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	err = f.interactions.Unlike(f.ctx, fan, primitive.NewObjectID().Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestLikeSurvivesNotificationFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFixtureWithLogger(t, zap.New(core))
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	postID := f.post(t, owner, "sunset")
	f.store.NotificationErr = errors.New("connection refused")

	require.NoError(t, f.interactions.Like(f.ctx, fan, postID))

	assert.Equal(t, []uint{fan}, f.likes(t, postID))
	assert.Empty(t, f.store.Notifications())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "notification not written", logs.All()[0].Message)
}

func TestCommentEmptyTextIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	postID := f.post(t, owner, "sunset")

	for _, text := range []string{"", "   "} {
		_, err := f.interactions.Comment(f.ctx, fan, postID, text)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "text %q", text)
	}

	p, err := f.store.GetPostByID(f.ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, p.Comments)
	assert.Empty(t, f.store.Notifications())
}

func TestCommentAppendsInOrderAndNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	postID := f.post(t, owner, "sunset")

	_, err := f.interactions.Comment(f.ctx, fan, postID, "wow")
	require.NoError(t, err)
	post, err := f.interactions.Comment(f.ctx, owner, postID, "thanks")
	require.NoError(t, err)

	require.Len(t, post.Comments, 2)
	assert.Equal(t, "fan", post.Comments[0].Username)
	assert.Equal(t, "wow", post.Comments[0].Text)
	assert.Equal(t, "owner", post.Comments[1].Username)
	assert.Equal(t, "thanks", post.Comments[1].Text)

	notifs := f.store.Notifications()
	require.Len(t, notifs, 1, "the owner's own comment is not notified")
	assert.Equal(t, models.NotificationComment, notifs[0].Type)
	assert.Equal(t, fan, notifs[0].ActorID)
	assert.Equal(t, owner, notifs[0].RecipientID)
}

func TestCommentKeepsUsernameAfterRename(t *testing.T) {
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	postID := f.post(t, owner, "sunset")
	_, err := f.interactions.Comment(f.ctx, fan, postID, "first")
	require.NoError(t, err)

	u, err := f.store.GetUserByID(f.ctx, fan)
	require.NoError(t, err)
	u.Username = "renamed"
	require.NoError(t, f.store.UpdateUser(f.ctx, u))

	p, err := f.store.GetPostByID(f.ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, "fan", p.Comments[0].Username)
}

func TestCommentOnMissingPost(t *testing.T) {
	f := newFixture(t)
	fan := f.user(t, "fan")

	_, err := f.interactions.Comment(f.ctx, fan, primitive.NewObjectID().Hex(), "hello")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUppercasePostIDStoresCanonicalNotificationPostID(t *testing.T) {
	f := newFixture(t)
	owner, fan, critic := f.user(t, "owner"), f.user(t, "fan"), f.user(t, "critic")
	postID := f.post(t, owner, "sunset")
	upper := strings.ToUpper(postID)
	require.NotEqual(t, postID, upper)

	require.NoError(t, f.interactions.Like(f.ctx, fan, upper))
	_, err := f.interactions.Comment(f.ctx, critic, upper, "nice")
	require.NoError(t, err)

	for _, n := range f.store.Notifications() {
		require.NotNil(t, n.PostID)
		assert.Equal(t, postID, *n.PostID)
	}

	list, err := f.notifications.List(f.ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.Equal(t, "https://img.example.com/sunset.jpg", n.PostImageURL, "type %s", n.Type)
	}
}
