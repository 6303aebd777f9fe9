package services

import (
	"context"
	"errors"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
)

// NotificationListLimit bounds List.
const NotificationListLimit = 50

// NotificationService reads a user's notifications and flips read flags.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	posts repositories.PostRepository,
) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, posts: posts}
}

// List returns userID's newest notifications with actor and post image
// resolved. A post that no longer resolves leaves PostImageURL empty.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.EnrichedNotification, error) {
	notifications, err := s.notifications.GetByRecipientID(ctx, userID, NotificationListLimit)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load notifications")
	}

	actorIDs := make([]uint, 0, len(notifications))
	var postIDs []string
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.ActorID)
		if n.PostID != nil {
			postIDs = append(postIDs, *n.PostID)
		}
	}
	actors, err := userIndex(ctx, s.users, actorIDs)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.GetPostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load posts")
	}

	enriched := make([]models.EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n, Actor: actors[n.ActorID]}
		if n.PostID != nil {
			if p, ok := posts[*n.PostID]; ok {
				enriched[i].PostImageURL = p.ImageURL
			}
		}
	}
	return enriched, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal(err, "Failed to count notifications")
	}
	return count, nil
}

// MarkRead sets the read flag of one of userID's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Notification not found")
		}
		return apperrors.Internal(err, "Failed to load notification")
	}
	if n.RecipientID != userID {
		return apperrors.Forbidden("Unauthorized")
	}
	if n.IsRead {
		return nil
	}
	if err := s.notifications.MarkAsRead(ctx, notificationID); err != nil {
		return apperrors.Internal(err, "Failed to update notification")
	}
	return nil
}

// MarkAllRead marks every unread notification of userID and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal(err, "Failed to update notifications")
	}
	return n, nil
}
