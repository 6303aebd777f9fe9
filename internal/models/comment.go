package models

import "time"

// Comment is an entry of a post's comment list. Username is copied at
// comment time and never follows later renames.
type Comment struct {
	Username  string    `json:"username" bson:"username"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}
