package services

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
)

// compactUsers resolves ids to {id, username} keeping the order of ids and
// dropping ids that no longer resolve.
func compactUsers(ctx context.Context, users repositories.UserRepository, ids []uint) ([]models.UserCompact, error) {
	byID, err := userIndex(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func userIndex(ctx context.Context, users repositories.UserRepository, ids []uint) (map[uint]models.UserCompact, error) {
	found, err := users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load users")
	}
	byID := make(map[uint]models.UserCompact, len(found))
	for i := range found {
		byID[found[i].ID] = found[i].ToCompact()
	}
	return byID, nil
}

// enrichPosts attaches author and likers to each post, as seen by viewerID.
func enrichPosts(ctx context.Context, users repositories.UserRepository, viewerID uint, posts []models.Post) ([]models.EnrichedPost, error) {
	var ids []uint
	for _, p := range posts {
		ids = append(ids, p.UserID)
		ids = append(ids, p.Likes...)
	}
	byID, err := userIndex(ctx, users, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedPost, len(posts))
	for i, p := range posts {
		likedBy := make([]models.UserCompact, 0, len(p.Likes))
		for _, id := range p.Likes {
			if u, ok := byID[id]; ok {
				likedBy = append(likedBy, u)
			}
		}
		enriched[i] = models.EnrichedPost{
			Post:    p,
			Author:  byID[p.UserID],
			LikedBy: likedBy,
			IsLiked: p.LikedBy(viewerID),
		}
	}
	return enriched, nil
}

func enrichPost(ctx context.Context, users repositories.UserRepository, viewerID uint, post *models.Post) (*models.EnrichedPost, error) {
	enriched, err := enrichPosts(ctx, users, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
