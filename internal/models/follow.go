package models

import "time"

// FollowingEdge is one entry of UserID's following set.
type FollowingEdge struct {
	UserID      uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FollowingID uint      `json:"following_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (FollowingEdge) TableName() string { return "user_following" }

// FollowerEdge is one entry of UserID's followers set. Every FollowingEdge
// {A, B} has a mirror FollowerEdge {B, A}.
type FollowerEdge struct {
	UserID     uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FollowerID uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FollowerEdge) TableName() string { return "user_followers" }
