package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a photo post stored in MongoDB. Likes and comments are
// embedded in the document.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	ImageURL  string             `json:"image_url" bson:"image_url"`
	Caption   string             `json:"caption" bson:"caption"`
	Likes     []uint             `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// LikedBy reports whether userID is in the post's likes.
func (p *Post) LikedBy(userID uint) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	ImageURL string `json:"image_url" validate:"required"`
	Caption  string `json:"caption" validate:"max=2200"`
}

// EnrichedPost is a post with author and likers resolved for display.
type EnrichedPost struct {
	Post
	Author  UserCompact   `json:"author"`
	LikedBy []UserCompact `json:"liked_by"`
	IsLiked bool          `json:"is_liked"`
}
