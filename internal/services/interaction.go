package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"go.uber.org/zap"
)

// InteractionService applies likes and comments to posts and notifies the
// post owner.
//
// Posts live in MongoDB and notifications in PostgreSQL, so the post write
// and the notification write cannot share a transaction. The post write
// happens first and is the source of truth; a failed notification write is
// logged and the request still succeeds.
type InteractionService struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

func NewInteractionService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	notifications repositories.NotificationRepository,
	logger *zap.Logger,
) *InteractionService {
	return &InteractionService{
		users:         users,
		posts:         posts,
		notifications: notifications,
		logger:        logger,
	}
}

// Like adds actorID to the post's likes.
func (s *InteractionService) Like(ctx context.Context, actorID uint, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return postLookupError(err)
	}
	if post.LikedBy(actorID) {
		return apperrors.Conflict("Post already liked")
	}

	added, err := s.posts.AddLike(ctx, postID, actorID)
	if err != nil {
		return postLookupError(err)
	}
	if !added {
		return apperrors.Conflict("Post already liked")
	}

	if post.UserID != actorID {
		s.notify(ctx, post.UserID, models.NotificationLike, actorID, post.ID.Hex())
	}
	return nil
}

// Unlike removes actorID from the post's likes. The like notification sent
// earlier is kept.
func (s *InteractionService) Unlike(ctx context.Context, actorID uint, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return postLookupError(err)
	}
	if !post.LikedBy(actorID) {
		return apperrors.Conflict("Post not liked yet")
	}

	removed, err := s.posts.RemoveLike(ctx, postID, actorID)
	if err != nil {
		return postLookupError(err)
	}
	if !removed {
		return apperrors.Conflict("Post not liked yet")
	}
	return nil
}

// Comment appends {actor username, text} to the post's comments and returns
// the updated post.
func (s *InteractionService) Comment(ctx context.Context, actorID uint, postID, text string) (*models.EnrichedPost, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.InvalidInput("Comment text is required")
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Unauthorized("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load user")
	}

	post, err := s.posts.AppendComment(ctx, postID, models.Comment{
		Username: actor.Username,
		Text:     text,
	})
	if err != nil {
		return nil, postLookupError(err)
	}

	if post.UserID != actorID {
		s.notify(ctx, post.UserID, models.NotificationComment, actorID, post.ID.Hex())
	}
	return enrichPost(ctx, s.users, actorID, post)
}

func (s *InteractionService) notify(ctx context.Context, recipientID uint, kind models.NotificationType, actorID uint, postID string) {
	n := &models.Notification{
		RecipientID: recipientID,
		Type:        kind,
		ActorID:     actorID,
		PostID:      &postID,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Error("notification not written",
			zap.String("type", string(kind)),
			zap.Uint("recipient_id", recipientID),
			zap.Uint("actor_id", actorID),
			zap.String("post_id", postID),
			zap.Error(err))
	}
}
