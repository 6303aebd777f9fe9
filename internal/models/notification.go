package models

import "time"

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification is a fan-in event record for RecipientID (PostgreSQL).
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"index;not null"`
	Type        NotificationType `json:"type" gorm:"size:20;not null"`
	ActorID     uint             `json:"actor_id" gorm:"index;not null"`
	PostID      *string          `json:"post_id" gorm:"size:24"` // nil for follow
	IsRead      bool             `json:"read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

// EnrichedNotification includes actor info and the referenced post image
type EnrichedNotification struct {
	Notification
	Actor        UserCompact `json:"actor"`
	PostImageURL string      `json:"post_image_url,omitempty"`
}
