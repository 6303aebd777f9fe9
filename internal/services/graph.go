package services

import (
	"context"
	"errors"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"go.uber.org/zap"
)

// DiscoverLimit bounds the discovery list.
const DiscoverLimit = 50

// GraphService owns the follow graph and the feed derived from it.
//
// Follow and unfollow update both edge sets and, for follow, write the
// notification inside one PostgreSQL transaction, so the sets stay
// symmetric even when a write fails halfway.
type GraphService struct {
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	tx            repositories.Transactor
	logger        *zap.Logger
}

func NewGraphService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
	notifications repositories.NotificationRepository,
	tx repositories.Transactor,
	logger *zap.Logger,
) *GraphService {
	return &GraphService{
		users:         users,
		follows:       follows,
		posts:         posts,
		notifications: notifications,
		tx:            tx,
		logger:        logger,
	}
}

// Follow adds targetID to actorID's following set, actorID to targetID's
// followers set, and notifies targetID.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return apperrors.InvalidOperation("Cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return userLookupError(err)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		following, err := s.follows.IsFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if following {
			return apperrors.Conflict("Already following this user")
		}
		if err := s.follows.AddFollowing(ctx, actorID, targetID); err != nil {
			return err
		}
		if err := s.follows.AddFollower(ctx, targetID, actorID); err != nil {
			return err
		}
		return s.notifications.CreateNotification(ctx, &models.Notification{
			RecipientID: targetID,
			Type:        models.NotificationFollow,
			ActorID:     actorID,
		})
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperrors.Conflict("Already following this user")
	}
	if err != nil {
		return passThrough(err, "Failed to follow user")
	}

	s.logger.Debug("user followed", zap.Uint("actor_id", actorID), zap.Uint("target_id", targetID))
	return nil
}

// Unfollow removes both edge entries. Notifications already sent stay.
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return userLookupError(err)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		following, err := s.follows.IsFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !following {
			return apperrors.Conflict("Not following this user")
		}
		if err := s.follows.RemoveFollowing(ctx, actorID, targetID); err != nil {
			return err
		}
		err = s.follows.RemoveFollower(ctx, targetID, actorID)
		if errors.Is(err, repositories.ErrNotFound) {
			// Mirror entry already missing; removing the forward edge
			// restores symmetry.
			s.logger.Warn("follower edge missing during unfollow",
				zap.Uint("actor_id", actorID), zap.Uint("target_id", targetID))
			return nil
		}
		return err
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Conflict("Not following this user")
	}
	return passThrough(err, "Failed to unfollow user")
}

// Feed returns every post by userID or by anyone userID follows, newest
// first. It is not paginated.
func (s *GraphService) Feed(ctx context.Context, userID uint) ([]models.EnrichedPost, error) {
	followingIDs, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load following")
	}
	owners := append(followingIDs, userID)

	posts, err := s.posts.GetPostsByUserIDs(ctx, owners)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load feed")
	}
	return enrichPosts(ctx, s.users, userID, posts)
}

// Discover lists up to DiscoverLimit users other than userID with their
// edge counts and whether userID follows them.
func (s *GraphService) Discover(ctx context.Context, userID uint) ([]models.DiscoverableUser, error) {
	users, err := s.users.ListUsersExcept(ctx, userID, DiscoverLimit)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load users")
	}
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	followers, err := s.follows.CountFollowers(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to count followers")
	}
	following, err := s.follows.CountFollowing(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to count following")
	}
	myFollowing, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load following")
	}
	followed := make(map[uint]bool, len(myFollowing))
	for _, id := range myFollowing {
		followed[id] = true
	}

	result := make([]models.DiscoverableUser, len(users))
	for i, u := range users {
		result[i] = models.DiscoverableUser{
			ID:             u.ID,
			Username:       u.Username,
			FollowersCount: followers[u.ID],
			FollowingCount: following[u.ID],
			IsFollowing:    followed[u.ID],
		}
	}
	return result, nil
}

// Profile returns userID's profile with resolved follower and following
// lists, as seen by viewerID.
func (s *GraphService) Profile(ctx context.Context, viewerID, userID uint) (*models.Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}

	followerIDs, err := s.follows.GetFollowerIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load followers")
	}
	followingIDs, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load following")
	}
	followers, err := compactUsers(ctx, s.users, followerIDs)
	if err != nil {
		return nil, err
	}
	following, err := compactUsers(ctx, s.users, followingIDs)
	if err != nil {
		return nil, err
	}
	isFollowing, err := s.follows.IsFollowing(ctx, viewerID, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load follow status")
	}

	return &models.Profile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Followers:      followers,
		Following:      following,
		FollowersCount: len(followers),
		FollowingCount: len(following),
		IsFollowing:    isFollowing,
		IsOwnProfile:   viewerID == userID,
	}, nil
}
