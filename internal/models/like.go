package models

import (
	"time"
)

// Like records one user's like of one target. Posts and replies share this
// relation, keyed by the target's id. The row is the source of truth;
// the like_count columns on posts and replies are cached projections of it.
// The composite primary key enforces at most one like per user per target.
type Like struct {
	TargetID  string    `gorm:"primaryKey;type:char(36);column:post_id" json:"targetId"`
	UserID    string    `gorm:"primaryKey;type:char(36);column:user_id" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName keeps the historical relation name shared by post and reply likes.
func (Like) TableName() string {
	return "post_likes"
}

// LikeAction is the desired state transition for SetLike.
type LikeAction string

const (
	// LikeAdd inserts the like row and increments the target's counter.
	LikeAdd LikeAction = "add"
	// LikeRemove deletes the like row and decrements the target's counter.
	LikeRemove LikeAction = "remove"
)
