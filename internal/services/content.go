package services

import (
	"context"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
)

// ContentService creates and looks up posts.
type ContentService struct {
	users repositories.UserRepository
	posts repositories.PostRepository
}

func NewContentService(users repositories.UserRepository, posts repositories.PostRepository) *ContentService {
	return &ContentService{users: users, posts: posts}
}

// CreatePost stores a new post owned by ownerID.
func (s *ContentService) CreatePost(ctx context.Context, ownerID uint, req models.CreatePostRequest) (*models.EnrichedPost, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, apperrors.InvalidInput("Image URL is required")
	}

	post := &models.Post{
		UserID:   ownerID,
		ImageURL: req.ImageURL,
		Caption:  req.Caption,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Internal(err, "Failed to create post")
	}
	return enrichPost(ctx, s.users, ownerID, post)
}

func (s *ContentService) GetPost(ctx context.Context, viewerID uint, postID string) (*models.EnrichedPost, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, postLookupError(err)
	}
	return enrichPost(ctx, s.users, viewerID, post)
}

// UserPosts returns userID's posts, newest first.
func (s *ContentService) UserPosts(ctx context.Context, viewerID, userID uint) ([]models.EnrichedPost, error) {
	posts, err := s.posts.GetPostsByUserIDs(ctx, []uint{userID})
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load posts")
	}
	return enrichPosts(ctx, s.users, viewerID, posts)
}
